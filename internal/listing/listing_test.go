package listing

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID   string
	Name string
	Age  int
}

var personFields = Fields[person]{
	"id":   func(p person) any { return p.ID },
	"name": func(p person) any { return p.Name },
	"age":  func(p person) any { return p.Age },
}

func people() []person {
	return []person{
		{ID: "U1", Name: "John Doe", Age: 40},
		{ID: "U2", Name: "Jane Smith", Age: 9},
		{ID: "U3", Name: "alice Johnson", Age: 31},
		{ID: "U4", Name: "Bob Stone", Age: 31},
	}
}

func names(ps []person) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestFilter_CaseInsensitive(t *testing.T) {
	users := []person{{ID: "U1", Name: "John Doe"}, {ID: "U2", Name: "Jane Smith"}}

	got := Filter(users, personFields, "jane")
	require.Len(t, got, 1)
	assert.Equal(t, "U2", got[0].ID)

	got = Filter(people(), personFields, "JOHN")
	assert.Equal(t, []string{"John Doe", "alice Johnson"}, names(got))

	got = Filter(people(), personFields, "31")
	assert.Len(t, got, 2, "numeric fields are searched in their string form")

	assert.Len(t, Filter(people(), personFields, "  "), 4)
}

func TestSort(t *testing.T) {
	tests := []struct {
		name  string
		state SortState
		want  []string
	}{
		{
			name:  "unsorted keeps input order",
			state: SortState{Key: "name"},
			want:  []string{"John Doe", "Jane Smith", "alice Johnson", "Bob Stone"},
		},
		{
			name:  "strings ascending use collation not byte order",
			state: SortState{Key: "name", Direction: Ascending},
			want:  []string{"alice Johnson", "Bob Stone", "Jane Smith", "John Doe"},
		},
		{
			name:  "strings descending",
			state: SortState{Key: "name", Direction: Descending},
			want:  []string{"John Doe", "Jane Smith", "Bob Stone", "alice Johnson"},
		},
		{
			name:  "numbers ascending are numeric and stable",
			state: SortState{Key: "age", Direction: Ascending},
			want:  []string{"Jane Smith", "alice Johnson", "Bob Stone", "John Doe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := people()
			require.NoError(t, Sort(ps, personFields, tt.state))
			assert.Equal(t, tt.want, names(ps))
		})
	}
}

func TestSort_UnknownKey(t *testing.T) {
	err := Sort(people(), personFields, SortState{Key: "salary", Direction: Ascending})
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestSortState_Toggle(t *testing.T) {
	var s SortState
	s = s.Toggle("name")
	assert.Equal(t, SortState{Key: "name", Direction: Ascending}, s)
	s = s.Toggle("name")
	assert.Equal(t, Descending, s.Direction)
	s = s.Toggle("name")
	assert.Equal(t, Unsorted, s.Direction)

	s = SortState{Key: "name", Direction: Descending}.Toggle("age")
	assert.Equal(t, SortState{Key: "age", Direction: Ascending}, s, "a new key resets to ascending")
}

func TestSortState_ThreeTogglesRestoreOrder(t *testing.T) {
	original := people()
	state := SortState{Key: "name"}

	for i := 0; i < 3; i++ {
		state = state.Toggle("name")
	}

	page, err := Apply(original, personFields, Query{Sort: state, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, names(original), names(page.Items))
}

func TestPaginate(t *testing.T) {
	records := make([]int, 13)
	for i := range records {
		records[i] = i + 1
	}

	p := Paginate(records, 3, 5)
	assert.Equal(t, []int{11, 12, 13}, p.Items)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 13, p.Total)
	assert.Equal(t, 11, p.From)
	assert.Equal(t, 13, p.To)

	p = Paginate(records, 1, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, p.Items)
	assert.Equal(t, 1, p.From)
	assert.Equal(t, 5, p.To)

	p = Paginate(records, 4, 5)
	assert.Empty(t, p.Items)
	assert.Zero(t, p.From)

	p = Paginate(records, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	p = Paginate([]int{}, 1, 5)
	assert.Zero(t, p.TotalPages)
	assert.Empty(t, p.Items)
}

func TestPaginate_HugePage(t *testing.T) {
	records := []int{1, 2, 3}
	for _, page := range []int{math.MaxInt, math.MaxInt/5 + 2, math.MaxInt / MaxPageSize} {
		t.Run(fmt.Sprint(page), func(t *testing.T) {
			p := Paginate(records, page, 5)
			assert.Empty(t, p.Items)
			assert.Zero(t, p.From)
			assert.Equal(t, 3, p.To)
			assert.Equal(t, 3, p.Total)
			assert.Equal(t, page, p.Page)
		})
	}

	p := Paginate(records, math.MaxInt, MaxPageSize)
	assert.Empty(t, p.Items)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	original := people()
	before := fmt.Sprint(original)

	_, err := Apply(original, personFields, Query{Sort: SortState{Key: "name", Direction: Descending}})
	require.NoError(t, err)
	assert.Equal(t, before, fmt.Sprint(original))
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"": Unsorted, "none": Unsorted, "ASC": Ascending, "desc": Descending} {
		got, err := ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDirection("up")
	assert.Error(t, err)
}
