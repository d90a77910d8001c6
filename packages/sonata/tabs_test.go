package sonata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tabsPage = `<html><body><form>
<div class="nav-tabs-custom">
  <ul class="nav nav-tabs" role="tablist">
    <li class="active"><a href="#tab_s1_general" data-toggle="tab"><i class="fa fa-exclamation-circle has-errors hide"></i> General</a></li>
    <li><a href="#tab_s1_extra" data-toggle="tab">Extra</a></li>
    <li><a href="#tab_s1_orphan" data-toggle="tab">Orphan</a></li>
  </ul>
  <div class="tab-content">
    <div class="tab-pane fade in active" id="tab_s1_general"><p>general fields</p></div>
    <div class="tab-pane fade" id="tab_s1_extra"><p>extra fields</p></div>
  </div>
</div>
</form></body></html>`

func TestAssertTabExists(t *testing.T) {
	doc := parse(t, tabsPage)

	assert.True(t, AssertTabExists(t, doc, "General"))
	assert.True(t, AssertTabExists(t, doc, "Extra"))

	t.Run("missing label", func(t *testing.T) {
		mt := &mockT{}
		assert.False(t, AssertTabExists(mt, doc, "History"))
		require.Len(t, mt.messages, 1)
		assert.Contains(t, mt.Output(), `tab with label "History" not found`)
	})

	t.Run("label without pane", func(t *testing.T) {
		mt := &mockT{}
		assert.False(t, AssertTabExists(mt, doc, "Orphan"))
		assert.Contains(t, mt.Output(), `pane for tab with label "Orphan" not found`)
	})
}

func TestAssertTabNotExists(t *testing.T) {
	doc := parse(t, tabsPage)

	assert.True(t, AssertTabNotExists(t, doc, "History"))

	mt := &mockT{}
	assert.False(t, AssertTabNotExists(mt, doc, "General"))
	assert.Contains(t, mt.Output(), `tab with label "General" found`)
}

func TestAssertTabPaneExists_MissingLabel(t *testing.T) {
	mt := &mockT{}
	assert.False(t, AssertTabPaneExists(mt, parse(t, tabsPage), "Nope"))
	assert.Contains(t, mt.Output(), `tab with label "Nope" not found`)
}

func TestTabLabels(t *testing.T) {
	labels, err := TabLabels(parse(t, tabsPage))
	require.NoError(t, err)
	assert.Equal(t, []string{"General", "Extra", "Orphan"}, labels)
}
