package workflow

import (
	"fmt"
	"sort"

	"github.com/robna/gepard-BlindCorr/domain/core"
	apperrors "github.com/robna/gepard-BlindCorr/internal/errors"
)

// Step is one resolved correction: a target dataset and the controls that
// are eliminated from it. Controls are applied in declaration order.
type Step struct {
	Target   string
	Controls []string
}

// checkCycles runs a depth-first walk over the correction graph with an edge
// from every control to the target it corrects. Self-loops are rejected
// first with their own error.
func checkCycles(corrections map[string]ControlList) error {
	for target, controls := range corrections {
		for _, ctrl := range controls {
			if ctrl == target {
				return apperrors.WithCode(apperrors.CodeCycleDetected,
					core.NewSelfCorrectionError(target))
			}
		}
	}

	visited := make(map[string]bool)
	visiting := make(map[string]bool)

	var visit func(node string, trail []string) error
	visit = func(node string, trail []string) error {
		if visiting[node] {
			return apperrors.WithCode(apperrors.CodeCycleDetected,
				core.NewCycleError(append(trail, node)))
		}
		if visited[node] {
			return nil
		}
		visiting[node] = true
		for _, ctrl := range corrections[node] {
			if err := visit(ctrl, append(trail, node)); err != nil {
				return err
			}
		}
		visiting[node] = false
		visited[node] = true
		return nil
	}

	for _, target := range sortedTargets(corrections) {
		if err := visit(target, nil); err != nil {
			return err
		}
	}
	return nil
}

// resolveOrder produces an execution order in which every dataset is
// corrected before it is used as a control (Kahn's algorithm). Targets with
// no pending control dependencies run first; ties break alphabetically so
// runs are reproducible.
func resolveOrder(corrections map[string]ControlList) ([]Step, error) {
	pending := make(map[string]int, len(corrections))
	dependents := make(map[string][]string)
	for target, controls := range corrections {
		pending[target] = 0
		for _, ctrl := range controls {
			if _, isTarget := corrections[ctrl]; isTarget {
				pending[target]++
				dependents[ctrl] = append(dependents[ctrl], target)
			}
		}
	}

	var ready []string
	for target, deps := range pending {
		if deps == 0 {
			ready = append(ready, target)
		}
	}
	sort.Strings(ready)

	var order []Step
	for len(ready) > 0 {
		target := ready[0]
		ready = ready[1:]
		order = append(order, Step{Target: target, Controls: corrections[target]})

		released := dependents[target]
		sort.Strings(released)
		for _, dep := range released {
			pending[dep]--
			if pending[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		sort.Strings(ready)
	}

	if len(order) != len(corrections) {
		var stuck []string
		for target, deps := range pending {
			if deps > 0 {
				stuck = append(stuck, target)
			}
		}
		sort.Strings(stuck)
		return nil, apperrors.CycleDetected(
			fmt.Sprintf("correction graph cannot be ordered, unresolved targets: %v", stuck))
	}
	return order, nil
}

// Resolve validates the correction graph and returns the execution order.
func Resolve(corrections map[string]ControlList) ([]Step, error) {
	if err := checkCycles(corrections); err != nil {
		return nil, err
	}
	return resolveOrder(corrections)
}

func sortedTargets(corrections map[string]ControlList) []string {
	targets := make([]string, 0, len(corrections))
	for target := range corrections {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}
