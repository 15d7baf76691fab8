// Package chart loads chart-of-accounts templates and seeds a tenant's
// chart through the account service.
package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finbooks/general_ledger_app/internal/core/domain"
	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/dto"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TemplateAccount is one account definition in a chart template.
type TemplateAccount struct {
	AccountCode       string  `yaml:"code" validate:"required"`
	Name              string  `yaml:"name" validate:"required"`
	AccountType       string  `yaml:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	SpecialType       string  `yaml:"special_type" validate:"omitempty,oneof=CONTRA_ASSET ACCUMULATED_DEPRECIATION PROVISION CONTROL CLEARING SUSPENSE TAX FX_GAIN_LOSS INTERCOMPANY ELIMINATION GOODWILL"`
	ParentAccountCode *string `yaml:"parent"`
	Description       string  `yaml:"description"`
	PostingAllowed    *bool   `yaml:"posting_allowed"`
}

// Template is a named chart-of-accounts template. Accounts are listed in
// seeding order, parents before children.
type Template struct {
	Name        string            `yaml:"name" validate:"required"`
	Description string            `yaml:"description"`
	Currency    string            `yaml:"currency" validate:"required,len=3"`
	Accounts    []TemplateAccount `yaml:"accounts" validate:"required,min=1,dive"`
}

var validate = validator.New()

// LoadTemplate reads and validates a chart template from a YAML file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart template: %w", err)
	}

	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse chart template: %w", err)
	}

	if err := validate.Struct(&tpl); err != nil {
		return nil, fmt.Errorf("invalid chart template %q: %w", path, err)
	}

	seen := make(map[string]struct{}, len(tpl.Accounts))
	for _, acc := range tpl.Accounts {
		if _, dup := seen[acc.AccountCode]; dup {
			return nil, fmt.Errorf("invalid chart template %q: duplicate account code %s", path, acc.AccountCode)
		}
		seen[acc.AccountCode] = struct{}{}
		if acc.ParentAccountCode != nil {
			if _, ok := seen[*acc.ParentAccountCode]; !ok {
				return nil, fmt.Errorf("invalid chart template %q: account %s lists parent %s before it is defined", path, acc.AccountCode, *acc.ParentAccountCode)
			}
		}
	}

	return &tpl, nil
}

// LoadTemplateDir loads every .yaml template in a directory, keyed by file
// name without extension.
func LoadTemplateDir(dir string) (map[string]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart template dir: %w", err)
	}

	templates := make(map[string]*Template)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		tpl, err := LoadTemplate(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		key := entry.Name()[:len(entry.Name())-len(".yaml")]
		templates[key] = tpl
	}
	return templates, nil
}

// Seed creates every account in the template for the tenant, in template
// order. Seeding stops at the first failure; already-created accounts are
// left in place, so a rerun after fixing the template resumes where it
// stopped (duplicates are rejected by the account service).
func Seed(ctx context.Context, accountSvc portssvc.AccountSvcFacade, tenantID string, tpl *Template, userID string) ([]domain.Account, error) {
	created := make([]domain.Account, 0, len(tpl.Accounts))
	for _, acc := range tpl.Accounts {
		req := dto.CreateAccountRequest{
			AccountCode:       acc.AccountCode,
			Name:              acc.Name,
			AccountType:       domain.AccountType(acc.AccountType),
			SpecialType:       domain.SpecialAccountType(acc.SpecialType),
			CurrencyCode:      tpl.Currency,
			ParentAccountCode: acc.ParentAccountCode,
			Description:       acc.Description,
			PostingAllowed:    acc.PostingAllowed,
		}
		account, err := accountSvc.CreateAccount(ctx, tenantID, req, userID)
		if err != nil {
			return created, fmt.Errorf("seeding account %s: %w", acc.AccountCode, err)
		}
		created = append(created, *account)
	}
	return created, nil
}
