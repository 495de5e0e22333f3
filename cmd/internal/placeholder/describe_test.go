package placeholder

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_ItemsMatchCount(t *testing.T) {
	for _, k := range Kinds() {
		for _, n := range []int{1, 3, 10} {
			s, err := Describe(k, n)
			require.NoError(t, err, "%s x%d", k, n)
			assert.Equal(t, k, s.Kind())
			assert.Equal(t, n, s.Count())

			items := s.Items()
			require.Len(t, items, n, "%s x%d", k, n)
			for i, it := range items {
				assert.Equal(t, Item{Kind: k, Index: i}, it)
			}
		}
	}
}

func TestDescribe_CardList(t *testing.T) {
	s, err := Describe(KindCardList, 3)
	require.NoError(t, err)

	want := []Item{
		{Kind: KindCardList, Index: 0},
		{Kind: KindCardList, Index: 1},
		{Kind: KindCardList, Index: 2},
	}
	if diff := cmp.Diff(want, s.Items()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe_ZeroCountHasNoItems(t *testing.T) {
	for _, k := range Kinds() {
		s, err := Describe(k, 0)
		require.NoError(t, err, k)
		assert.Empty(t, s.Items(), k)
		assert.NotNil(t, s.Items(), k)
	}
}

func TestDescribe_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		kind  Kind
		count int
	}{
		{"unknown kind", Kind("carousel"), 2},
		{"empty kind", Kind(""), 1},
		{"negative count", KindBlock, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Describe(tc.kind, tc.count)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSpec))

			var ise *InvalidSpecError
			require.ErrorAs(t, err, &ise)
			assert.Equal(t, string(tc.kind), ise.Kind)
			assert.Equal(t, tc.count, ise.Count)
		})
	}
}

func TestDescribe_IsIdempotent(t *testing.T) {
	a, err := Describe(KindCardList, 4)
	require.NoError(t, err)
	b, err := Describe(KindCardList, 4)
	require.NoError(t, err)

	assert.True(t, a == b)
	assert.Equal(t, a.Items(), b.Items())

	c, err := Describe(KindCardList, 5)
	require.NoError(t, err)
	assert.False(t, a == c)
}

func TestMustDescribe_PanicsOnInvalid(t *testing.T) {
	assert.NotPanics(t, func() { MustDescribe(KindPageHeader, 1) })
	assert.PanicsWithError(t, (&InvalidSpecError{Kind: "nope", Count: 1, Reason: "unknown kind"}).Error(), func() {
		MustDescribe(Kind("nope"), 1)
	})
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("  Card-List ")
	require.NoError(t, err)
	assert.Equal(t, KindCardList, k)

	_, err = ParseKind("hero")
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestSpec_JSON(t *testing.T) {
	s := MustDescribe(KindBlock, 2)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"block","count":2,"items":[{"kind":"block","index":0},{"kind":"block","index":1}]}`, string(raw))

	var back Spec
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back == s)

	err = json.Unmarshal([]byte(`{"kind":"block","count":-3}`), &back)
	assert.ErrorIs(t, err, ErrInvalidSpec)

	err = json.Unmarshal([]byte(`{"kind":"block","count":1000000000}`), &back)
	var invalid *InvalidSpecError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "count too large", invalid.Reason)
	assert.True(t, back == s, "rejected input leaves the spec unchanged")
}
