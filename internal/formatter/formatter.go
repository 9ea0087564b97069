// Package formatter merges direct-mapped values and organizer output into the
// final FormattedOutput.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"acordex/internal/domain"
)

// Formatter renders extraction results. It is safe for concurrent use.
type Formatter struct {
	printer *message.Printer
}

// New creates a Formatter that groups currency digits the US English way.
func New() *Formatter {
	return &Formatter{printer: message.NewPrinter(language.AmericanEnglish)}
}

// Merge builds the output document. Direct-mapped values own their paths and
// organizer output only ever lands under unformatted_data. A nil organized
// result leaves unformatted_data as empty placeholders.
func (f *Formatter) Merge(direct domain.DirectMapResult, organized *domain.OrganizedResult) (*domain.FormattedOutput, error) {
	out := domain.NewFormattedOutput()

	for _, m := range direct.Mapped {
		if len(m.Path) < 2 {
			return nil, fmt.Errorf("formatter: mapped path %q is too short", strings.Join(m.Path, "."))
		}
		sec, ok := out.Root(m.Path[0])
		if !ok {
			return nil, fmt.Errorf("formatter: mapped path %q has no output root", strings.Join(m.Path, "."))
		}
		value := m.Value
		if m.Transform == domain.TransformCurrency {
			value = f.DisplayCurrency(value)
		}
		// first mapped value for a path wins
		sec.Set(m.Path[1:], value)
	}

	if organized != nil {
		out.UnformattedData = unformatted(organized)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// DisplayCurrency groups the integer digits of a canonical currency value,
// so "1000000" becomes "1,000,000" and "2500.5" becomes "2,500.5". Values
// that are not canonical pass through.
func (f *Formatter) DisplayCurrency(canonical string) string {
	intPart, frac, hasFrac := strings.Cut(canonical, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || n < 0 {
		return canonical
	}
	grouped := f.printer.Sprintf("%d", n)
	if hasFrac {
		return grouped + "." + frac
	}
	return grouped
}

func unformatted(o *domain.OrganizedResult) domain.UnformattedData {
	u := domain.UnformattedData{
		Insured:           trimParty(o.Insured),
		Producer:          trimProducer(o.Producer),
		CertificateHolder: trimParty(o.CertificateHolder),
		Insurers:          make([]domain.Insurer, 0, len(o.Insurers)),
		AdditionalFields:  make(map[string]string, len(o.AdditionalFields)),
	}

	for _, ins := range o.Insurers {
		ins = domain.Insurer{
			Letter: strings.TrimSpace(ins.Letter),
			Name:   strings.TrimSpace(ins.Name),
			NAIC:   strings.TrimSpace(ins.NAIC),
		}
		if ins.Name == "" && ins.NAIC == "" {
			continue
		}
		u.Insurers = append(u.Insurers, ins)
	}

	known := map[string]struct{}{}
	for _, v := range []string{
		u.Insured.Name, u.Insured.Address,
		u.Producer.Name, u.Producer.Address, u.Producer.ContactPerson,
		u.Producer.Phone, u.Producer.Fax, u.Producer.Email,
		u.CertificateHolder.Name, u.CertificateHolder.Address,
	} {
		if v != "" {
			known[v] = struct{}{}
		}
	}
	for label, v := range o.AdditionalFields {
		label, v = strings.TrimSpace(label), strings.TrimSpace(v)
		if label == "" || v == "" {
			continue
		}
		if _, dup := known[v]; dup {
			continue
		}
		u.AdditionalFields[label] = v
	}
	return u
}

func trimParty(p domain.Party) domain.Party {
	return domain.Party{Name: strings.TrimSpace(p.Name), Address: strings.TrimSpace(p.Address)}
}

func trimProducer(p domain.Producer) domain.Producer {
	return domain.Producer{
		Name:          strings.TrimSpace(p.Name),
		Address:       strings.TrimSpace(p.Address),
		ContactPerson: strings.TrimSpace(p.ContactPerson),
		Phone:         strings.TrimSpace(p.Phone),
		Fax:           strings.TrimSpace(p.Fax),
		Email:         strings.TrimSpace(p.Email),
	}
}
