package quality

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProfiles(t *testing.T) {
	set := Builtin()
	assert.Equal(t, []string{Average, HighEnd, Speech}, set.Names())

	p, err := set.Get("")
	require.NoError(t, err)
	assert.Equal(t, HighEnd, p.Name)
	assert.Equal(t, 10000.0, p.HFCheckHz)

	_, err = set.Get("studio")
	assert.True(t, errors.Is(err, ErrUnknownProfile))
}

func TestOverride(t *testing.T) {
	set := Builtin()
	require.NoError(t, set.Override(Speech, Profile{DFWarn: 12, HFCheckHz: 5000}))

	p, err := set.Get(Speech)
	require.NoError(t, err)
	assert.Equal(t, 12.0, p.DFWarn)
	assert.Equal(t, 5000.0, p.HFCheckHz)
	assert.Equal(t, 5.0, p.DFErr, "unset fields keep their value")

	fresh, _ := Builtin().Get(Speech)
	assert.Equal(t, 10.0, fresh.DFWarn, "overrides do not leak into other sets")

	assert.ErrorIs(t, set.Override("studio", Profile{}), ErrUnknownProfile)
}

func TestClassify(t *testing.T) {
	p, _ := Builtin().Get(HighEnd)

	tests := []struct {
		name string
		in   Input
		want Verdict
	}{
		{"clean", Input{DropPercent: 1, DampingFactor: 50}, Verdict{StatusOK, ""}},
		{"drop warn", Input{DropPercent: 6, DampingFactor: 50}, Verdict{StatusWarning, MsgHighDrop}},
		{"df warn overrides drop warn", Input{DropPercent: 6, DampingFactor: 16.7}, Verdict{StatusWarning, MsgLowDF}},
		{"drop error", Input{DropPercent: 8, DampingFactor: 50}, Verdict{StatusError, MsgCriticalDrop}},
		{"drop error beats df warn", Input{DropPercent: 8, DampingFactor: 16.7}, Verdict{StatusError, MsgCriticalDrop}},
		{"df error", Input{DropPercent: 1, DampingFactor: 9}, Verdict{StatusError, MsgCriticalDF}},
		{"df not applicable", Input{DropPercent: 1}, Verdict{StatusOK, ""}},
		{"headroom ignored off root", Input{DropPercent: 1, DampingFactor: 50, HeadroomPercent: 95}, Verdict{StatusOK, ""}},
		{"headroom on root", Input{DropPercent: 1, DampingFactor: 50, HeadroomPercent: 95, IsRoot: true}, Verdict{StatusWarning, MsgLowHeadroom}},
		{"headroom keeps error", Input{DropPercent: 8, DampingFactor: 50, HeadroomPercent: 95, IsRoot: true}, Verdict{StatusError, MsgLowHeadroom}},
		{"cv uses cv limits", Input{DropPercent: 7, ConstantVoltage: true}, Verdict{StatusWarning, MsgHighDrop}},
		{"cv ignores df", Input{DropPercent: 1, DampingFactor: 2, ConstantVoltage: true}, Verdict{StatusOK, ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in, p))
		})
	}
}

func TestClassify_DampingScenario(t *testing.T) {
	p := Profile{LowZDropWarn: 5, LowZDropErr: 7.5, DFWarn: 20, DFErr: 10, HeadroomWarn: 0.8}
	df := 8 / (0.08 + 0.4)

	v := Classify(Input{DropPercent: 0, DampingFactor: df}, p)
	assert.Equal(t, StatusWarning, v.Status)
	assert.Equal(t, MsgLowDF, v.Message)
}
