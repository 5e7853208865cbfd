package checker

// MapTasks returns the map exercises mapCode1 through mapCode10.
func MapTasks() []Task {
	return []Task{
		{
			ID:    "mapCode1",
			Title: "Create a map of ages",
			Checker: Any(
				Contains("make(map[string]int)"),
				Contains("map[string]int{", `"Alice"`, "25"),
			),
			Solution: `func CreateAgeMap() map[string]int {
    return map[string]int{
        "Alice":   25,
        "Bob":     30,
        "Charlie": 35,
    }
}`,
		},
		{
			ID:      "mapCode2",
			Title:   "Check whether a key exists",
			Checker: Contains("_, ok := m[key]", "return ok"),
			Solution: `func HasKey(m map[string]int, key string) bool {
    _, ok := m[key]
    return ok
}`,
		},
		{
			ID:    "mapCode3",
			Title: "Count entries with a given value",
			Checker: All(
				Contains("range", "count"),
				Any(Contains("if"), Contains("==")),
			),
			Solution: `func CountByValue(m map[string]int, value int) int {
    count := 0
    for _, v := range m {
        if v == value {
            count++
        }
    }
    return count
}`,
		},
		{
			ID:      "mapCode4",
			Title:   "Collect the keys",
			Checker: Contains("make([]string", "range", "append"),
			Solution: `func GetKeys(m map[string]int) []string {
    keys := make([]string, 0, len(m))
    for k := range m {
        keys = append(keys, k)
    }
    return keys
}`,
		},
		{
			ID:      "mapCode5",
			Title:   "Invert a map",
			Checker: Contains("make(map[int]string", "range", "result["),
			Solution: `func InvertMap(m map[string]int) map[int]string {
    result := make(map[int]string)
    for k, v := range m {
        result[v] = k
    }
    return result
}`,
		},
		{
			ID:      "mapCode6",
			Title:   "Filter by minimum value",
			Checker: Contains("make(map[string]int", ">=", "range"),
			Solution: `func FilterByValue(m map[string]int, minValue int) map[string]int {
    result := make(map[string]int)
    for k, v := range m {
        if v >= minValue {
            result[k] = v
        }
    }
    return result
}`,
		},
		{
			ID:    "mapCode7",
			Title: "Merge two maps",
			Checker: All(
				Contains("make(map[string]int", "range"),
				Matches(`range.*m[12]`),
			),
			Solution: `func MergeMaps(m1, m2 map[string]int) map[string]int {
    result := make(map[string]int)
    for k, v := range m1 {
        result[k] = v
    }
    for k, v := range m2 {
        result[k] = v
    }
    return result
}`,
		},
		{
			ID:    "mapCode8",
			Title: "Find the key with the largest value",
			Checker: All(
				Contains("len(m)", "range"),
				Any(Contains("maxValue"), Contains("max")),
			),
			Solution: `func FindMaxKey(m map[string]int) string {
    if len(m) == 0 {
        return ""
    }

    var maxKey string
    var maxValue int
    first := true

    for k, v := range m {
        if first || v > maxValue {
            maxKey = k
            maxValue = v
            first = false
        }
    }
    return maxKey
}`,
		},
		{
			ID:      "mapCode9",
			Title:   "Group keys by length",
			Checker: Contains("map[int][]string", "len(", "append"),
			Solution: `func GroupByKeyLength(m map[string]int) map[int][]string {
    result := make(map[int][]string)
    for k := range m {
        length := len(k)
        result[length] = append(result[length], k)
    }
    return result
}`,
		},
		{
			ID:    "mapCode10",
			Title: "Count character frequency",
			Checker: All(
				Contains("map[rune]int", "range"),
				Any(Contains("rune("), Contains("for _, char")),
			),
			Solution: `func CharFrequency(s string) map[rune]int {
    result := make(map[rune]int)
    for _, char := range s {
        result[char]++
    }
    return result
}`,
		},
	}
}
