package domain

import "strings"

type ItemType string

const (
	Worksheet ItemType = "worksheet"
	Course    ItemType = "course"
	Comic     ItemType = "comic"
)

func (t ItemType) Valid() bool {
	switch t {
	case Worksheet, Course, Comic:
		return true
	}
	return false
}

type (
	CatalogItem struct {
		ID             string
		Type           ItemType
		Title          string
		Description    string
		Price          int64
		Tags           []string
		Thumb          string
		DownloadSample string
		Digital        bool
		Physical       bool
		Bestseller     bool
		New            bool
	}

	Site struct {
		Brand     string
		Tagline   string
		Highlight string
		Social    SiteSocial
		Payment   SitePayment
	}

	SiteSocial struct {
		Facebook string
		Line     string
		YouTube  string
	}

	SitePayment struct {
		HowTo        string
		CheckoutLink string
	}
)

// Matches reports whether the lowercased needle is a substring of the
// item title, description or any of its tags.
func (i CatalogItem) Matches(needle string) bool {
	if strings.Contains(strings.ToLower(i.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(i.Description), needle) {
		return true
	}
	for _, tag := range i.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
