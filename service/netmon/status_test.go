package netmon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusProtected, classify(true, true))
	assert.Equal(t, StatusInsecure, classify(false, true))
	assert.Equal(t, StatusOffline, classify(true, false))
	assert.Equal(t, StatusOffline, classify(false, false))
}

func TestTriggerForced(t *testing.T) {
	t.Parallel()

	assert.True(t, TriggerInit.Forced())
	assert.True(t, TriggerManual.Forced())
	assert.True(t, TriggerToggle.Forced())
	assert.False(t, TriggerAuto.Forced())
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Protected", StatusProtected.String())
	assert.Equal(t, "Insecure", StatusInsecure.String())
	assert.Equal(t, "Offline", StatusOffline.String())
	assert.Equal(t, "Resolving", StatusResolving.String())
	assert.Equal(t, "Disabled", StatusDisabled.String())
	assert.Equal(t, "Unknown", StatusUnknown.String())
	assert.Equal(t, "Unknown", Status(200).String())
}
