package steghunt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion_Shells(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			resetFlags()
			out, err := execute(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "steghunt")
		})
	}
}

func TestCompletion_RejectsUnknownShell(t *testing.T) {
	resetFlags()
	_, err := execute(t, "completion", "tcsh")
	assert.Error(t, err)

	_, err = execute(t, "completion")
	assert.Error(t, err)
}
