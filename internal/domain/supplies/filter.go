package supplies

import "strings"

// AllCategories отключает фильтр по категории.
const AllCategories = "all"

// Search: подстрока без учёта регистра по описанию, цвету, типу или категории.
// Пустой (или из пробелов) запрос возвращает список как есть.
func Search(list []Supply, term string) []Supply {
	if strings.TrimSpace(term) == "" {
		return list
	}
	t := strings.ToLower(term)
	out := make([]Supply, 0, len(list))
	for _, s := range list {
		if strings.Contains(strings.ToLower(s.Description), t) ||
			strings.Contains(strings.ToLower(s.Color.Name), t) ||
			strings.Contains(strings.ToLower(s.Type.Name), t) ||
			strings.Contains(strings.ToLower(s.Type.Category.Name), t) {
			out = append(out, s)
		}
	}
	return out
}

// FilterByCategory: точное совпадение имени категории без учёта регистра.
func FilterByCategory(list []Supply, category string) []Supply {
	if category == AllCategories {
		return list
	}
	out := make([]Supply, 0, len(list))
	for _, s := range list {
		if strings.EqualFold(s.Type.Category.Name, category) {
			out = append(out, s)
		}
	}
	return out
}

// Apply: сначала поиск, потом категория.
func Apply(list []Supply, term, category string) []Supply {
	return FilterByCategory(Search(list, term), category)
}

// Categories: уникальные имена категорий в порядке первого появления.
func Categories(list []Supply) []string {
	seen := make(map[string]struct{}, len(list))
	out := []string{}
	for _, s := range list {
		name := s.Type.Category.Name
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

type Summary struct {
	Total      int
	Active     int
	WithStock  int
	LowStock   int
	OutOfStock int
}

func Summarize(list []Supply) Summary {
	var sum Summary
	sum.Total = len(list)
	for _, s := range list {
		if s.Active {
			sum.Active++
		}
		if HasStock(s.Stock) {
			sum.WithStock++
		} else {
			sum.OutOfStock++
		}
		if HasLowStock(s.Stock) {
			sum.LowStock++
		}
	}
	return sum
}
