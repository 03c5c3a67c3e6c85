package registry

import "strings"

const (
	officerMarker  = "officers"
	documentMarker = "document"
)

// OfficerID recovers the officer identifier from a record's links. Company
// officer listings carry it under links.officer.appointments, search results
// under links.self. The bool is false when no link is present or the link has
// no officers segment; that means the detail view is unavailable, not that
// anything failed.
func OfficerID(links *Links) (string, bool) {
	if links == nil {
		return "", false
	}

	link := ""
	if links.Officer != nil {
		link = links.Officer.Appointments
	}
	if strings.TrimSpace(link) == "" {
		link = links.Self
	}
	return segmentAfter(link, officerMarker)
}

// DocumentID recovers the document API identifier of a filing.
func DocumentID(links *FilingLinks) (string, bool) {
	if links == nil {
		return "", false
	}
	return segmentAfter(links.DocumentMetadata, documentMarker)
}

func segmentAfter(link, marker string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}
	if cut := strings.IndexAny(link, "?#"); cut >= 0 {
		link = link[:cut]
	}

	parts := strings.Split(link, "/")
	for idx := 0; idx < len(parts)-1; idx++ {
		if parts[idx] == marker && parts[idx+1] != "" {
			return parts[idx+1], true
		}
	}
	return "", false
}
