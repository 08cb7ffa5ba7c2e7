package rank

import (
	"regexp"

	"jobsniper/internal/domain"
)

// matches "$50k", "$100,000", "$90K - $120K"
var salaryRe = regexp.MustCompile(`(\$\d+(?:,\d+)?(?:k|K)?(?:\s*-\s*\$\d+(?:,\d+)?(?:k|K)?)?)`)

// ExtractSalary returns the first dollar amount or range in text.
func ExtractSalary(text string) string {
	if m := salaryRe.FindString(text); m != "" {
		return m
	}
	return domain.SalaryNotListed
}
