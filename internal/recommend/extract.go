package recommend

import (
	"regexp"
	"strconv"
	"strings"
)

var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*원`),
	regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*만원`),
	regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*천원`),
	regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})*)`),
	regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*₩`),
}

var ratingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d\.?\d?)\s*점`),
	regexp.MustCompile(`(\d\.?\d?)\s*★`),
	regexp.MustCompile(`(\d\.?\d?)\s*별`),
	regexp.MustCompile(`평점\s*(\d\.?\d?)`),
	regexp.MustCompile(`rating\s*(\d\.?\d?)`),
	regexp.MustCompile(`(\d\.?\d?)\s*/\s*5`),
}

// storefronts are domains of known shopping sites.
var storefronts = []string{
	"shopping.naver.com", "coupang.com", "11st.co.kr",
	"gmarket.co.kr", "auction.co.kr", "interpark.com",
	"lotte.com", "homeplus.co.kr", "emart.com",
}

// ExtractPrice returns the first price found in text, in won. The unit
// multiplier is chosen from the whole text: "만원" anywhere means x10000,
// otherwise "천원" means x1000.
func ExtractPrice(text string) *int {
	for _, re := range pricePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		price, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(text, "만원"):
			price *= 10000
		case strings.Contains(text, "천원"):
			price *= 1000
		}
		return &price
	}
	return nil
}

// ExtractRating returns the first rating <= 5 found in text. A match above 5
// moves on to the next pattern.
func ExtractRating(text string) *float64 {
	lower := strings.ToLower(text)
	for _, re := range ratingPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		rating, err := strconv.ParseFloat(m[1], 64)
		if err != nil || rating > 5 {
			continue
		}
		return &rating
	}
	return nil
}

// IsStorefront reports whether link points at a known shopping site.
func IsStorefront(link string) bool {
	lower := strings.ToLower(link)
	for _, site := range storefronts {
		if strings.Contains(lower, site) {
			return true
		}
	}
	return false
}
