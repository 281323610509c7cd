package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedShadowHTML = `<html><body>
<outer-host><template shadowrootmode="open">
  <mid-host><template shadowrootmode="open">
    <inner-host><template shadowrootmode="open">
      <div data-review-id="deep" aria-label="review card"><span class="text">Nested deep</span></div>
    </template></inner-host>
  </template></mid-host>
</template></outer-host>
<div data-review-id="light"><span class="text">Light DOM</span></div>
</body></html>`

func TestDeepQueryFindsNodeThreeShadowRootsDownOnce(t *testing.T) {
	t.Parallel()

	tree, err := ParseTree(strings.NewReader(nestedShadowHTML))
	require.NoError(t, err)

	assert.Zero(t, tree.Doc.Find(`div[data-review-id="deep"]`).Length(), "shadow content must not leak into the light tree")
	assert.Equal(t, 1, tree.ShadowRoots())

	nodes := tree.DeepQuery(ReviewContainerSelectors)
	require.Len(t, nodes, 2)

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		id, _ := n.Attr("data-review-id")
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"light", "deep"}, ids)
}

func TestDeepQuerySkipsInertTemplates(t *testing.T) {
	t.Parallel()

	doc := `<html><body>
<template id="card"><div data-review-id="stamp"><span class="text">Template</span></div></template>
<review-host><template shadowrootmode="open">
  <template><div data-review-id="shadow-stamp"><span class="text">Nested template</span></div></template>
  <div data-review-id="real"><span class="text">Real review</span></div>
</template></review-host>
</body></html>`

	tree, err := ParseTree(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, tree.ShadowRoots())

	nodes := tree.DeepQuery(ReviewContainerSelectors)
	require.Len(t, nodes, 1)
	id, _ := nodes[0].Attr("data-review-id")
	assert.Equal(t, "real", id)
}

func TestExtractReviewsAcrossShadowRoots(t *testing.T) {
	t.Parallel()

	reviews, err := ExtractReviews(nestedShadowHTML, ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	count := 0
	for _, r := range reviews {
		if r.ID == "deep" {
			count++
			assert.Equal(t, "Nested deep", r.Text)
		}
	}
	assert.Equal(t, 1, count)
}

func TestDeepQueryDeduplicatesAcrossSelectors(t *testing.T) {
	t.Parallel()

	html := `<div data-review-id="x" jslog="review; track" aria-label="review">
	  <span class="text">once</span></div>`
	tree, err := ParseTree(strings.NewReader(html))
	require.NoError(t, err)

	assert.Len(t, tree.DeepQuery(ReviewContainerSelectors), 1)
}

func TestShadowTextDoesNotLeakIntoHost(t *testing.T) {
	t.Parallel()

	html := `<div data-review-id="host"><span class="text">light text</span>
	  <template shadowrootmode="open"><span class="text">shadow text</span></template></div>`

	reviews, err := ExtractReviews(html, ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "light text", reviews[0].Text)
}
