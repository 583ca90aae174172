package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robna/gepard-BlindCorr/domain/core"
)

func elim(ctrl, target string, diff float64) Elimination {
	return Elimination{
		ControlID:    core.ParticleID(ctrl),
		EliminatedID: core.ParticleID(target),
		SampleName:   "s1",
		Polymer:      "PE",
		Color:        "blue",
		Shape:        "fragment",
		SizeDiff:     diff,
	}
}

func TestLog_AppendAndIDs(t *testing.T) {
	log := NewLog(KindBlank)
	log.Append(elim("C1", "P1", 10))
	log.Append(elim("C2", "P3", 2.5))

	assert.Equal(t, 2, log.Len())
	assert.Equal(t, []core.ParticleID{"P1", "P3"}, log.EliminatedIDs())
}

func TestLog_FingerprintIsDeterministic(t *testing.T) {
	a := NewLog(KindBlind)
	b := NewLog(KindBlind)
	for _, l := range []*Log{a, b} {
		l.Append(elim("C1", "P1", 10))
		l.Append(elim("C2", "P3", 2.5))
	}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestLog_FingerprintSensitiveToOrder(t *testing.T) {
	a := NewLog(KindBlank)
	a.Append(elim("C1", "P1", 10))
	a.Append(elim("C2", "P3", 2.5))

	b := NewLog(KindBlank)
	b.Append(elim("C2", "P3", 2.5))
	b.Append(elim("C1", "P1", 10))

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint(),
		"elimination order is part of the audit identity")
}

func TestLog_NilSafeLen(t *testing.T) {
	var log *Log
	assert.Equal(t, 0, log.Len())
}
