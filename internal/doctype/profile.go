package doctype

import "strings"

// Kind identifies an analysis profile.
type Kind string

const (
	// Rental covers leases and rental contracts
	Rental Kind = "rental"
	// Loan covers loans, credit cards and financing
	Loan Kind = "loan"
	// Employment covers employment contracts, NDAs and non-competes
	Employment Kind = "employment"
	// Terms covers terms of service and privacy policies
	Terms Kind = "terms"
	// Insurance covers health, auto, home and life policies
	Insurance Kind = "insurance"
	// General is used when nothing else matches
	General Kind = "general"
)

// Profile is the focus guidance given to the producer for one kind of
// document.
type Profile struct {
	Kind Kind
	// Name is the category label used in detection and analytics.
	Name string
	// Examples lists what falls under the category in the detection prompt.
	Examples string
	// Focus lists the areas to examine, one numbered point per line.
	Focus []string
	// RiskFocus says what should drive the risk score.
	RiskFocus string
}

// Profiles lists every profile in detection-prompt order; General is last.
func Profiles() []Profile {
	return []Profile{rentalProfile(), loanProfile(), employmentProfile(), termsProfile(), insuranceProfile(), generalProfile()}
}

// GetProfile returns the profile for a free-form type name.
func GetProfile(docType string) Profile {
	switch normalizeKind(docType) {
	case Rental:
		return rentalProfile()
	case Loan:
		return loanProfile()
	case Employment:
		return employmentProfile()
	case Terms:
		return termsProfile()
	case Insurance:
		return insuranceProfile()
	default:
		return generalProfile()
	}
}

// normalizeKind maps labels, kind names and loose descriptions
// ("residential lease", "credit card agreement") to a Kind.
func normalizeKind(s string) Kind {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case string(Rental), "rental/housing documents", "housing", "lease":
		return Rental
	case string(Loan), "loan and credit agreements", "credit":
		return Loan
	case string(Employment), "employment documents":
		return Employment
	case string(Terms), "terms of service/privacy policies", "tos", "privacy":
		return Terms
	case string(Insurance), "insurance policies":
		return Insurance
	}
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(v, func(r rune) bool { return !(r >= 'a' && r <= 'z' || r == '-') }) {
		words[w] = true
	}
	switch {
	case strings.Contains(v, "terms of service"), strings.Contains(v, "terms of use"),
		strings.Contains(v, "privacy"), words["eula"], words["tos"]:
		return Terms
	case strings.Contains(v, "insurance"):
		return Insurance
	case strings.Contains(v, "rental"), strings.Contains(v, "lease"), strings.Contains(v, "housing"),
		strings.Contains(v, "tenan"):
		return Rental
	case strings.Contains(v, "loan"), strings.Contains(v, "credit"), strings.Contains(v, "mortgage"),
		strings.Contains(v, "financing"):
		return Loan
	case strings.Contains(v, "employ"), strings.Contains(v, "non-compete"), strings.Contains(v, "non-disclosure"),
		words["nda"], words["ndas"]:
		return Employment
	default:
		return General
	}
}

func rentalProfile() Profile {
	return Profile{
		Kind:     Rental,
		Name:     "Rental/Housing Documents",
		Examples: "lease agreements, rental contracts",
		Focus: []string{
			"RENT TERMS: Monthly amount, due dates, late fees, grace periods",
			"SECURITY DEPOSIT: Amount, return conditions, allowable deductions",
			"TERMINATION: Notice requirements, penalties, transition periods",
			"RESTRICTIONS: Pet policies, subletting rules, noise ordinances",
			"MAINTENANCE: Who pays utilities, repair responsibilities, property modifications",
			"RED FLAGS: Excessive fees, unreasonable restrictions, unfair termination clauses",
		},
		RiskFocus: "tenant rights violations, excessive financial obligations, predatory clauses",
	}
}

func loanProfile() Profile {
	return Profile{
		Kind:     Loan,
		Name:     "Loan and Credit Agreements",
		Examples: "loans, credit cards, financing",
		Focus: []string{
			"INTEREST RATES: APR, variable vs. fixed, rate change conditions",
			"PAYMENT TERMS: Monthly amounts, due dates, grace periods, late fees",
			"FEES: Origination, processing, prepayment penalties, annual fees",
			"DEFAULT: Conditions triggering default, acceleration clauses, consequences",
			"INSURANCE: Required coverage, premium costs, beneficiaries",
			"RED FLAGS: Predatory lending practices, excessive fees, confusing terms",
		},
		RiskFocus: "debt trap potential, hidden costs, unfair collection practices",
	}
}

func employmentProfile() Profile {
	return Profile{
		Kind:     Employment,
		Name:     "Employment Documents",
		Examples: "employment contracts, NDAs, non-compete agreements",
		Focus: []string{
			"COMPENSATION: Base salary, bonuses, benefits, equity, expense reimbursement",
			"RESPONSIBILITIES: Job duties, reporting structure, performance metrics",
			"CONFIDENTIALITY: NDA scope, trade secrets, duration of obligations",
			"TERMINATION: Notice periods, severance, return of company property",
			"RESTRICTIONS: Non-compete geography/duration, non-solicitation clauses",
			"RED FLAGS: Overly broad restrictions, unpaid obligations, unfair termination",
		},
		RiskFocus: "career mobility limitations, unfair compensation, excessive obligations",
	}
}

func termsProfile() Profile {
	return Profile{
		Kind:     Terms,
		Name:     "Terms of Service/Privacy Policies",
		Examples: "website terms, privacy policies",
		Focus: []string{
			"DATA PRIVACY: Collection practices, sharing with third parties, user rights",
			"SERVICE TERMS: Availability, feature changes, account suspension/termination",
			"USER OBLIGATIONS: Acceptable use, prohibited activities, content guidelines",
			"LIABILITY: Limitation of damages, indemnification, warranty disclaimers",
			"DISPUTE RESOLUTION: Arbitration requirements, class action waivers, governing law",
			"RED FLAGS: Excessive data collection, unfair termination, binding arbitration abuse",
		},
		RiskFocus: "privacy violations, loss of legal rights, service dependency",
	}
}

func insuranceProfile() Profile {
	return Profile{
		Kind:     Insurance,
		Name:     "Insurance Policies",
		Examples: "health, auto, home, life insurance",
		Focus: []string{
			"COVERAGE: What's included/excluded, benefit limits, geographic scope",
			"COSTS: Premiums, deductibles, co-pays, out-of-pocket maximums",
			"CLAIMS: Filing requirements, documentation needed, processing timelines",
			"EXCLUSIONS: Pre-existing conditions, high-risk activities, coverage gaps",
			"RENEWAL: Rate changes, policy modifications, cancellation rights",
			"RED FLAGS: Hidden exclusions, excessive costs, claim denial patterns",
		},
		RiskFocus: "coverage gaps, claim denial risks, affordability issues",
	}
}

func generalProfile() Profile {
	return Profile{
		Kind:     General,
		Name:     DefaultType,
		Examples: "if none of the above match",
	}
}
