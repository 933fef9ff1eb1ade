package rules

import (
	"fmt"

	"github.com/mikey/mail-router/internal/core"
)

// Spec is the configuration shape of a single routing rule. It is mapped
// onto the predicate variant named by Predicate; fields that the variant
// does not need are ignored.
type Spec struct {
	ID                   int      `mapstructure:"id"`
	Queue                string   `mapstructure:"queue"`
	Description          string   `mapstructure:"description"`
	Predicate            string   `mapstructure:"predicate"`
	Keywords             []string `mapstructure:"keywords"`
	Domain               string   `mapstructure:"domain"`
	CheckAttachmentNames bool     `mapstructure:"check_attachment_names"`
}

// Predicate kind names accepted in rule configuration
const (
	PredicateSubjectContainsAny       = "subjectContainsAny"
	PredicateDomainEquals             = "domainEquals"
	PredicateSubjectOrBodyContainsAny = "subjectOrBodyContainsAny"
	PredicateDefault                  = "default"
)

// FromSpecs builds a validated rule set from configured rule specs, in the
// order given. The order is the evaluation priority chain.
func FromSpecs(specs []Spec) (*core.RuleSet, error) {
	rules := make([]core.Rule, 0, len(specs))
	for _, spec := range specs {
		predicate, err := buildPredicate(spec)
		if err != nil {
			return nil, err
		}
		rules = append(rules, core.Rule{
			ID:          spec.ID,
			Queue:       core.Queue(spec.Queue),
			Description: spec.Description,
			Predicate:   predicate,
		})
	}
	return core.NewRuleSet(rules)
}

func buildPredicate(spec Spec) (core.Predicate, error) {
	switch spec.Predicate {
	case PredicateSubjectContainsAny:
		if len(spec.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d: %s requires keywords", spec.ID, spec.Predicate)
		}
		return core.SubjectContainsAny{
			Keywords:             spec.Keywords,
			CheckAttachmentNames: spec.CheckAttachmentNames,
		}, nil
	case PredicateDomainEquals:
		if spec.Domain == "" {
			return nil, fmt.Errorf("rule %d: %s requires a domain", spec.ID, spec.Predicate)
		}
		return core.DomainEquals{Domain: spec.Domain}, nil
	case PredicateSubjectOrBodyContainsAny:
		if len(spec.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d: %s requires keywords", spec.ID, spec.Predicate)
		}
		return core.SubjectOrBodyContainsAny{Keywords: spec.Keywords}, nil
	case PredicateDefault:
		return core.Default{}, nil
	default:
		return nil, fmt.Errorf("rule %d: unsupported predicate kind: %s", spec.ID, spec.Predicate)
	}
}

// Canonical returns the five ORD document desk routing rules in their
// mandatory evaluation order. Rule IDs are the upstream rule numbers and
// deliberately do not follow the evaluation order.
func Canonical() (*core.RuleSet, error) {
	return core.NewRuleSet([]core.Rule{
		{
			ID:          2,
			Queue:       core.QueueAccountInquiryUS,
			Description: "Account Inquiry emails with specific terms in subject",
			Predicate: core.SubjectContainsAny{
				Keywords:             []string{"power of attorney", "poa", "account needed", "account setup"},
				CheckAttachmentNames: true,
			},
		},
		{
			ID:          3,
			Queue:       core.QueueNonUPSShipments,
			Description: "Emails from Evergreen Line domain",
			Predicate:   core.DomainEquals{Domain: "@mail.evergreen-line.com"},
		},
		{
			ID:          4,
			Queue:       core.QueuePreAlert,
			Description: "RAFT Pre-Alert emails",
			Predicate: core.SubjectContainsAny{
				Keywords: []string{"pre-alert", "pre alert", "prealert"},
			},
		},
		{
			ID:          5,
			Queue:       core.QueueArrivalNotice,
			Description: "RAFT Arrival Notice emails",
			Predicate: core.SubjectOrBodyContainsAny{
				Keywords: []string{"arrival notice"},
			},
		},
		{
			ID:          1,
			Queue:       core.QueueShipmentInitiation,
			Description: "Default rule - all other emails",
			Predicate:   core.Default{},
		},
	})
}
