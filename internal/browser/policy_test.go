package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicyHosts(t *testing.T) {
	p, err := NewPolicy("https://TriviumInteractive.com/", []string{" Store.Example.com ", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"triviuminteractive.com", "www.triviuminteractive.com", "store.example.com"}, p.Hosts())

	p, err = NewPolicy("https://www.triviuminteractive.com", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"www.triviuminteractive.com", "triviuminteractive.com"}, p.Hosts())
}

func TestNewPolicyRejectsHostless(t *testing.T) {
	_, err := NewPolicy("/just/a/path", nil)
	assert.Error(t, err)
}

func TestPolicyClassify(t *testing.T) {
	p, err := NewPolicy("https://triviuminteractive.com", nil)
	require.NoError(t, err)

	current := "https://triviuminteractive.com/studio?x=1"
	tests := []struct {
		target string
		want   Decision
	}{
		{"https://triviuminteractive.com/games", OpenInFrame},
		{"https://www.triviuminteractive.com/games", OpenInFrame},
		{"http://triviuminteractive.com:8080/", OpenInFrame},
		{"https://triviuminteractive.com/studio?x=1#team", OpenInPage},
		{"https://triviuminteractive.com/studio?x=2#team", OpenInFrame},
		{"https://triviuminteractive.com/studio?x=1", OpenInFrame},
		{"https://twitter.com/trivium", OpenExternal},
		{"mailto:hello@triviuminteractive.com", OpenExternal},
		{"://bad", OpenExternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Classify(current, tt.target), tt.target)
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "frame", OpenInFrame.String())
	assert.Equal(t, "in-page", OpenInPage.String())
	assert.Equal(t, "external", OpenExternal.String())
	assert.Equal(t, "Decision(7)", Decision(7).String())
}
