package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"civic-apps/internal/registry"
)

func printSearch(out io.Writer, results registry.SearchResults) {
	fmt.Fprintf(out, "Companies (%d found)\n", results.TotalCompanies)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, company := range results.Companies {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", company.CompanyNumber, company.Title, company.CompanyStatus, company.AddressSnippet)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\nOfficers (%d found)\n", results.TotalOfficers)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, officer := range results.Officers {
		id := officer.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", id, officer.Title, officer.Description)
	}
	_ = tw.Flush()
}

func printDossier(out io.Writer, d registry.Dossier) {
	p := d.Profile
	fmt.Fprintf(out, "%s (%s)\n", p.CompanyName, p.CompanyNumber)
	fmt.Fprintf(out, "  Status:      %s\n", p.CompanyStatus)
	fmt.Fprintf(out, "  Type:        %s\n", p.Type)
	fmt.Fprintf(out, "  Created:     %s\n", p.DateOfCreation)
	if address := p.RegisteredOfficeAddress.String(); address != "" {
		fmt.Fprintf(out, "  Office:      %s\n", address)
	}
	if len(p.SICCodes) > 0 {
		fmt.Fprintf(out, "  SIC:         %s\n", strings.Join(p.SICCodes, ", "))
	}
	if p.Accounts != nil && p.Accounts.LastAccounts != nil {
		fmt.Fprintf(out, "  Accounts:    made up to %s (%s)\n", p.Accounts.LastAccounts.MadeUpTo, p.Accounts.LastAccounts.Type)
	}

	fmt.Fprintf(out, "\nOfficers (%d)\n", len(d.Officers))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, officer := range d.Officers {
		status := "active"
		if !officer.Active() {
			status = "resigned " + officer.ResignedOn
		}
		id := officer.ID
		if !officer.HasDetail() {
			id = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", officer.Name, officer.OfficerRole, status, id)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\nPersons with significant control (%d)\n", len(d.PSCs))
	for _, psc := range d.PSCs {
		fmt.Fprintf(out, "  %s: %s\n", psc.Name, strings.Join(psc.NaturesOfControl, ", "))
	}

	fmt.Fprintf(out, "\nFilings (%d)\n", len(d.Filings))
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, filing := range d.Filings {
		documentID, _ := registry.DocumentID(filing.Links)
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", filing.Date, filing.Category, filing.Description, documentID)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\nCharges (%d)\n", len(d.Charges))
	for _, charge := range d.Charges {
		description := ""
		if charge.Classification != nil {
			description = charge.Classification.Description
		}
		fmt.Fprintf(out, "  %s %s %s %s\n", charge.ChargeCode, charge.Status, charge.CreatedOn, description)
	}
}

func printAppointments(out io.Writer, appointments []registry.Appointment) {
	fmt.Fprintf(out, "Appointments (%d)\n", len(appointments))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, a := range appointments {
		status := "active"
		if a.ResignedOn != "" {
			status = "resigned " + a.ResignedOn
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			a.AppointedTo.CompanyNumber, a.AppointedTo.CompanyName, a.OfficerRole, a.AppointedOn, status)
	}
	_ = tw.Flush()
}
