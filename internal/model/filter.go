package model

// Match is a predicate over a single element.
type Match func(el Element) bool

// MatchRole matches elements with the given role code. An empty role
// matches everything.
func MatchRole(role string) Match {
	return func(el Element) bool {
		return role == "" || el.Role == role
	}
}

// And combines predicates; all must hold.
func And(matches ...Match) Match {
	return func(el Element) bool {
		for _, m := range matches {
			if !m(el) {
				return false
			}
		}
		return true
	}
}

// FilterChildren returns the direct children of parent that satisfy match.
func FilterChildren(parent Element, match Match) []Element {
	var result []Element
	for _, child := range parent.Children {
		if match(child) {
			result = append(result, child)
		}
	}
	return result
}

// FilterDescendants returns every descendant of parent (excluding parent
// itself) that satisfies match, in document order.
func FilterDescendants(parent Element, match Match) []Element {
	var result []Element
	for _, child := range parent.Children {
		collectMatches(child, match, &result)
	}
	return result
}

func collectMatches(el Element, match Match, result *[]Element) {
	if match(el) {
		*result = append(*result, el)
	}
	for _, child := range el.Children {
		collectMatches(child, match, result)
	}
}

// FindByID searches a forest for the element with the given ID.
func FindByID(elements []Element, id int) (Element, bool) {
	for _, el := range elements {
		if el.ID == id {
			return el, true
		}
		if found, ok := FindByID(el.Children, id); ok {
			return found, true
		}
	}
	return Element{}, false
}

// Desktop wraps top-level windows in a synthetic root element.
func Desktop(windows []Element) Element {
	return Element{Role: RoleDesktop, Children: windows}
}

// BoundsIntersect checks if two [x, y, width, height] rectangles overlap.
func BoundsIntersect(a, b [4]int) bool {
	ax1, ay1, ax2, ay2 := a[0], a[1], a[0]+a[2], a[1]+a[3]
	bx1, by1, bx2, by2 := b[0], b[1], b[0]+b[2], b[1]+b[3]
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}
