package news

import (
	"reflect"
	"testing"
)

func TestResolveCategories(t *testing.T) {
	interests := []string{"stock", "bond"}

	tests := []struct {
		name     string
		category string
		want     []string
	}{
		{"omitted", "", []string{"stock", "bond"}},
		{"all", "all", []string{"stock", "bond"}},
		{"member", "bond", []string{"bond"}},
		{"not an interest", "crypto", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCategories(interests, tt.category)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveCategories(%v, %q) = %v, want %v", interests, tt.category, got, tt.want)
			}
		})
	}
}

func TestResolveCategoriesCopiesInterests(t *testing.T) {
	interests := []string{"stock"}
	got := ResolveCategories(interests, "")
	got[0] = "mutated"
	if interests[0] != "stock" {
		t.Error("Expected ResolveCategories to return a copy")
	}
}

func TestResolveCategoriesNoInterests(t *testing.T) {
	if got := ResolveCategories(nil, "stock"); len(got) != 0 {
		t.Errorf("Expected no categories, got %v", got)
	}
	if got := ResolveCategories(nil, "all"); got == nil || len(got) != 0 {
		t.Errorf("Expected an empty non-nil slice, got %#v", got)
	}
}
