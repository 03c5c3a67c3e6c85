package registry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"civic-apps/internal/balancesheet"
	"civic-apps/internal/paging"
)

const (
	// SearchPageSize matches the page the proxy serves by default.
	SearchPageSize = 20

	// MaxDocumentBytes caps how much of a filed document is read.
	MaxDocumentBytes = 50 << 20
)

// OfficerRef pairs an officer with the identifier derived from its links.
// An empty ID means the appointments view is unavailable.
type OfficerRef struct {
	Officer
	ID string `json:"officer_id,omitempty"`
}

func (r OfficerRef) HasDetail() bool {
	return r.ID != ""
}

type OfficerMatch struct {
	OfficerSummary
	ID string `json:"officer_id,omitempty"`
}

type SearchResults struct {
	Companies      []CompanySummary `json:"companies"`
	TotalCompanies int              `json:"total_companies"`
	Officers       []OfficerMatch   `json:"officers"`
	TotalOfficers  int              `json:"total_officers"`
}

// Dossier is everything the registry holds about one company.
type Dossier struct {
	Profile  CompanyProfile `json:"profile"`
	Officers []OfficerRef   `json:"officers"`
	PSCs     []PSC          `json:"persons_with_significant_control"`
	Filings  []Filing       `json:"filing_history"`
	Charges  []Charge       `json:"charges"`
}

// Search runs the company and officer searches concurrently. Both must
// succeed; the first failure cancels the other and is returned.
func (c *Client) Search(ctx context.Context, query string) (SearchResults, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return SearchResults{}, err
	}

	var (
		companies paging.Page[CompanySummary]
		officers  paging.Page[OfficerSummary]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := c.SearchCompanies(gctx, q, SearchPageSize, 0)
		if err != nil {
			return fmt.Errorf("company search: %w", err)
		}
		companies = page
		return nil
	})
	g.Go(func() error {
		page, err := c.SearchOfficers(gctx, q, SearchPageSize, 0)
		if err != nil {
			return fmt.Errorf("officer search: %w", err)
		}
		officers = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return SearchResults{}, err
	}

	results := SearchResults{
		Companies:      companies.Items,
		TotalCompanies: companies.TotalResults,
		Officers:       make([]OfficerMatch, 0, len(officers.Items)),
		TotalOfficers:  officers.TotalResults,
	}
	if results.Companies == nil {
		results.Companies = []CompanySummary{}
	}
	for _, item := range officers.Items {
		id, _ := OfficerID(item.Links)
		results.Officers = append(results.Officers, OfficerMatch{OfficerSummary: item, ID: id})
	}
	return results, nil
}

func (c *Client) AllCompanyOfficers(ctx context.Context, companyNumber string) ([]OfficerRef, error) {
	officers, err := paging.Collect(ctx, paging.DefaultPageSize, func(ctx context.Context, size, start int) (paging.Page[Officer], error) {
		return c.CompanyOfficers(ctx, companyNumber, size, start)
	})
	if err != nil {
		return nil, err
	}

	refs := make([]OfficerRef, 0, len(officers))
	for _, officer := range officers {
		id, _ := OfficerID(officer.Links)
		refs = append(refs, OfficerRef{Officer: officer, ID: id})
	}
	return refs, nil
}

func (c *Client) AllCompanyPSCs(ctx context.Context, companyNumber string) ([]PSC, error) {
	return paging.Collect(ctx, paging.DefaultPageSize, func(ctx context.Context, size, start int) (paging.Page[PSC], error) {
		return c.CompanyPSCs(ctx, companyNumber, size, start)
	})
}

func (c *Client) AllFilings(ctx context.Context, companyNumber string) ([]Filing, error) {
	return paging.Collect(ctx, paging.DefaultPageSize, func(ctx context.Context, size, start int) (paging.Page[Filing], error) {
		return c.FilingHistory(ctx, companyNumber, size, start)
	})
}

func (c *Client) AllCharges(ctx context.Context, companyNumber string) ([]Charge, error) {
	return paging.Collect(ctx, paging.DefaultPageSize, func(ctx context.Context, size, start int) (paging.Page[Charge], error) {
		return c.Charges(ctx, companyNumber, size, start)
	})
}

// Appointments collects every appointment held by an officer.
func (c *Client) Appointments(ctx context.Context, officerID string) ([]Appointment, error) {
	return paging.Collect(ctx, paging.DefaultPageSize, func(ctx context.Context, size, start int) (paging.Page[Appointment], error) {
		return c.OfficerAppointments(ctx, officerID, size, start)
	})
}

// Dossier loads the profile and then each collection in turn. The registry
// answers 404 for a company that has never filed PSCs or charges, so a
// missing collection is read as empty.
func (c *Client) Dossier(ctx context.Context, companyNumber string) (Dossier, error) {
	profile, err := c.CompanyProfile(ctx, companyNumber)
	if err != nil {
		return Dossier{}, err
	}
	dossier := Dossier{Profile: profile}

	if dossier.Officers, err = c.AllCompanyOfficers(ctx, companyNumber); emptyIfMissing(err) != nil {
		return Dossier{}, fmt.Errorf("officers: %w", err)
	}
	if dossier.PSCs, err = c.AllCompanyPSCs(ctx, companyNumber); emptyIfMissing(err) != nil {
		return Dossier{}, fmt.Errorf("persons with significant control: %w", err)
	}
	if dossier.Filings, err = c.AllFilings(ctx, companyNumber); emptyIfMissing(err) != nil {
		return Dossier{}, fmt.Errorf("filing history: %w", err)
	}
	if dossier.Charges, err = c.AllCharges(ctx, companyNumber); emptyIfMissing(err) != nil {
		return Dossier{}, fmt.Errorf("charges: %w", err)
	}

	if dossier.Officers == nil {
		dossier.Officers = []OfficerRef{}
	}
	if dossier.PSCs == nil {
		dossier.PSCs = []PSC{}
	}
	if dossier.Filings == nil {
		dossier.Filings = []Filing{}
	}
	if dossier.Charges == nil {
		dossier.Charges = []Charge{}
	}
	return dossier, nil
}

// BalanceSheet fetches the XHTML rendition of a filed accounts document and
// picks out its balance-sheet table.
func (c *Client) BalanceSheet(ctx context.Context, documentID string) (*balancesheet.Table, bool, error) {
	doc, err := c.Document(ctx, documentID, "application/xhtml+xml")
	if err != nil {
		return nil, false, err
	}
	defer doc.Body.Close()

	table, ok, err := balancesheet.Parse(io.LimitReader(doc.Body, MaxDocumentBytes))
	if err != nil {
		return nil, false, fmt.Errorf("parse document %s: %w", documentID, err)
	}
	return table, ok, nil
}

func emptyIfMissing(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
