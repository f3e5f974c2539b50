package pageview

import "math"

// ScrollRatio normalizes a scroll offset to [0,1]. A document that fits in
// the viewport has ratio 0.
func ScrollRatio(scrollTop, scrollHeight, viewportHeight int) float64 {
	if scrollHeight <= viewportHeight {
		return 0
	}
	r := float64(scrollTop) / float64(scrollHeight-viewportHeight)
	return math.Max(0, math.Min(1, r))
}

// EstimatePage maps a scroll position linearly onto the page count. It is
// a prior used until real measurements are available.
func EstimatePage(scrollTop, scrollHeight, viewportHeight, total int) int {
	if total < 1 {
		return 0
	}
	ratio := ScrollRatio(scrollTop, scrollHeight, viewportHeight)
	page := int(math.Round(ratio*float64(total-1))) + 1
	return clamp(page, 1, total)
}

// RatioForPage is the scroll ratio at which page sits in a document of
// total pages.
func RatioForPage(page, total int) float64 {
	if total <= 1 {
		return 0
	}
	page = clamp(page, 1, total)
	return float64(page-1) / float64(total-1)
}

// FindPageAtViewportCenter returns the page among pages whose vertical
// center is nearest the center of the viewport. It reports false when
// pages is empty.
func FindPageAtViewportCenter(pages []int, layout *Layout, scrollTop, viewportHeight int) (int, bool) {
	if len(pages) == 0 {
		return 0, false
	}
	center := float64(scrollTop) + float64(viewportHeight)/2

	best, bestDist := 0, math.Inf(1)
	for _, p := range pages {
		mid := float64(layout.Offset(p)) + float64(layout.Height(p))/2
		if d := math.Abs(mid - center); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, true
}
