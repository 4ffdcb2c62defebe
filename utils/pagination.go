package utils

import (
	"net/url"
	"strconv"
)

const onEachSide = 3

// PaginationLink is one entry of the pager: Previous, a page number, a gap, or Next.
// URL is nil when the link is disabled.
type PaginationLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// BuildPaginationLinks returns Previous, numbered pages and Next for a result of lastPage pages.
// base is the absolute URL of the listing; query carries filters that must survive paging.
func BuildPaginationLinks(base string, query url.Values, current, lastPage int) []PaginationLink {
	if lastPage < 1 {
		lastPage = 1
	}
	pageURL := func(page int) *string {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("page", strconv.Itoa(page))
		u := base + "?" + q.Encode()
		return &u
	}

	links := make([]PaginationLink, 0, lastPage+2)
	prev := PaginationLink{Label: "Previous"}
	if current > 1 {
		prev.URL = pageURL(current - 1)
	}
	links = append(links, prev)

	for _, n := range pageWindow(current, lastPage) {
		if n == 0 {
			links = append(links, PaginationLink{Label: "..."})
			continue
		}
		links = append(links, PaginationLink{URL: pageURL(n), Label: strconv.Itoa(n), Active: n == current})
	}

	next := PaginationLink{Label: "Next"}
	if current < lastPage {
		next.URL = pageURL(current + 1)
	}
	return append(links, next)
}

// pageWindow lists the page numbers to show; 0 marks an elided gap.
func pageWindow(current, last int) []int {
	if last < onEachSide*2+8 {
		return span(1, last)
	}
	window := onEachSide + 4
	switch {
	case current <= window:
		return join(span(1, window+onEachSide), span(last-1, last))
	case current > last-window:
		return join(span(1, 2), span(last-(window+onEachSide-1), last))
	default:
		return join(span(1, 2), span(current-onEachSide, current+onEachSide), span(last-1, last))
	}
}

func span(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func join(parts ...[]int) []int {
	out := []int{}
	for i, p := range parts {
		if i > 0 {
			out = append(out, 0)
		}
		out = append(out, p...)
	}
	return out
}

// LastPage returns the number of pages needed for total rows.
func LastPage(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
