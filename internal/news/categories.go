package news

// AllCategories is the category value that means "no explicit filter".
const AllCategories = "all"

// ResolveCategories returns the categories a listing may draw from: the user's
// interests, narrowed to category when one is given. An empty result means
// nothing can match and is not an error.
func ResolveCategories(interests []string, category string) []string {
	if category == "" || category == AllCategories {
		out := make([]string, len(interests))
		copy(out, interests)
		return out
	}
	for _, tag := range interests {
		if tag == category {
			return []string{category}
		}
	}
	return []string{}
}
