package listener

// matchPath reports whether path matches an ALB path pattern, where '*'
// matches any run of characters (including '/') and '?' exactly one.
// Matching is case-sensitive.
func matchPath(pattern, path string) bool {
	var (
		p, s         int
		starP, starS = -1, 0
	)

	for s < len(path) {
		switch {
		case p < len(pattern) && (pattern[p] == '?' || pattern[p] == path[s]):
			p++
			s++
		case p < len(pattern) && pattern[p] == '*':
			starP = p
			starS = s
			p++
		case starP >= 0:
			p = starP + 1
			starS++
			s = starS
		default:
			return false
		}
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}

	return p == len(pattern)
}
