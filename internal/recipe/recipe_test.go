package recipe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapbird/datamorph/internal/morph"
	"github.com/scrapbird/datamorph/internal/schema"
)

func TestNewRejectsEmptyName(t *testing.T) {
	_, err := New("", "")
	require.Error(t, err)
}

func TestRoundTripActions(t *testing.T) {
	doc, err := New("widen", "rename and cast")
	require.NoError(t, err)

	actions := []morph.Action{
		morph.NewRename("A", "X"),
		morph.NewDelete("B"),
		morph.NewCast("C", schema.WholeNumber),
		morph.NewFilter("X", morph.Equals, "Alice"),
	}
	require.NoError(t, doc.FromActions(actions, time.Unix(0, 0).UTC()))

	data, err := doc.Marshal()
	require.NoError(t, err)

	parsed, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, parsed.ID)
	assert.Equal(t, "widen", parsed.Name)
	require.Len(t, parsed.Actions, 4)
	assert.Equal(t, "rename", parsed.Actions[0].Type)
	assert.Equal(t, "cast", parsed.Actions[2].Type)
	assert.Equal(t, "wholeNumber", parsed.Actions[2].TargetType)
	assert.Equal(t, "filter", parsed.Actions[3].Type)
	assert.Equal(t, "equals", parsed.Actions[3].Op)

	restored, err := parsed.ToActions()
	require.NoError(t, err)
	require.Len(t, restored, 4)
	assert.Equal(t, actions, restored)
}

func TestUnmarshalRejectsMissingName(t *testing.T) {
	_, err := Unmarshal([]byte(`{"id":"x","actions":[]}`))
	require.Error(t, err)
}

func TestUnmarshalRejectsUnknownActionType(t *testing.T) {
	doc, err := Unmarshal([]byte(`{"id":"x","name":"n","actions":[{"type":"bogus"}]}`))
	require.NoError(t, err)
	_, err = doc.ToActions()
	require.Error(t, err)
}
