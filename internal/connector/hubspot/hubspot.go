// Package hubspot exposes the HubSpot CRM API as connector tools.
package hubspot

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/oauth"
)

const (
	providerName = "hubspot"
	apiBaseURL   = "https://api.hubapi.com"
)

// Connector is the HubSpot provider integration.
type Connector struct {
	rest *connector.RESTClient
}

// New creates the HubSpot connector.
func New(opts ...connector.RESTOption) *Connector {
	return &Connector{
		rest: connector.NewRESTClient(providerName, apiBaseURL, opts...),
	}
}

func (c *Connector) Descriptor() connector.Descriptor {
	return connector.Descriptor{
		Name:     providerName,
		AuthKind: connector.AuthOAuth,
		Endpoints: oauth.Endpoints{
			AuthURL:  "https://app.hubspot.com/oauth/authorize",
			TokenURL: "https://api.hubapi.com/oauth/v1/token",
		},
		Scopes: []string{
			"crm.objects.contacts.read",
			"crm.objects.contacts.write",
			"crm.objects.companies.read",
			"crm.objects.companies.write",
			"crm.objects.deals.read",
			"crm.objects.deals.write",
		},
		// HubSpot refresh responses omit refresh_token; the prior one
		// stays valid
		ReusesRefreshToken: true,
	}
}

func (c *Connector) Tools() []connector.Tool {
	return []connector.Tool{
		{
			Name:           "list_contacts",
			Description:    "List CRM contacts",
			RequiredScopes: []string{"crm.objects.contacts.read"},
			Parameters: []connector.Param{
				{Name: "limit", Type: connector.ParamNumber, Description: "Number of contacts (default 10)"},
			},
		},
		{
			Name:           "create_contact",
			Description:    "Create a CRM contact",
			RequiredScopes: []string{"crm.objects.contacts.write"},
			Parameters: []connector.Param{
				{Name: "email", Type: connector.ParamString, Description: "Contact email", Required: true},
				{Name: "firstname", Type: connector.ParamString, Description: "First name"},
				{Name: "lastname", Type: connector.ParamString, Description: "Last name"},
			},
		},
		{
			Name:           "search_contacts",
			Description:    "Search contacts by a property value",
			RequiredScopes: []string{"crm.objects.contacts.read"},
			Parameters: []connector.Param{
				{Name: "property", Type: connector.ParamString, Description: "Property to filter on", Required: true},
				{Name: "value", Type: connector.ParamString, Description: "Value to match", Required: true},
			},
		},
		{
			Name:           "list_companies",
			Description:    "List CRM companies",
			RequiredScopes: []string{"crm.objects.companies.read"},
			Parameters: []connector.Param{
				{Name: "limit", Type: connector.ParamNumber, Description: "Number of companies (default 10)"},
			},
		},
		{
			Name:           "create_deal",
			Description:    "Create a CRM deal",
			RequiredScopes: []string{"crm.objects.deals.write"},
			Parameters: []connector.Param{
				{Name: "dealname", Type: connector.ParamString, Description: "Deal name", Required: true},
				{Name: "amount", Type: connector.ParamString, Description: "Deal amount"},
				{Name: "dealstage", Type: connector.ParamString, Description: "Pipeline stage"},
			},
		},
		{
			Name:           "update_contact",
			Description:    "Update properties of an existing contact",
			RequiredScopes: []string{"crm.objects.contacts.write"},
			Parameters: []connector.Param{
				{Name: "contact_id", Type: connector.ParamString, Description: "Contact ID", Required: true},
				{Name: "email", Type: connector.ParamString, Description: "New email"},
				{Name: "firstname", Type: connector.ParamString, Description: "New first name"},
				{Name: "lastname", Type: connector.ParamString, Description: "New last name"},
			},
		},
	}
}

func (c *Connector) Handler(tool string) (connector.Handler, bool) {
	switch tool {
	case "list_contacts":
		return c.listContacts, true
	case "create_contact":
		return c.createContact, true
	case "search_contacts":
		return c.searchContacts, true
	case "list_companies":
		return c.listCompanies, true
	case "create_deal":
		return c.createDeal, true
	case "update_contact":
		return c.updateContact, true
	}
	return nil, false
}

func (c *Connector) Resources() []connector.Resource { return nil }

func (c *Connector) listContacts(ctx context.Context, inv *connector.Invocation) (any, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprint(inv.Int("limit", 10)))
	return c.rest.Get(ctx, inv.Token, "/crm/v3/objects/contacts", query)
}

func (c *Connector) createContact(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Post(ctx, inv.Token, "/crm/v3/objects/contacts", map[string]any{
		"properties": map[string]any{
			"email":     inv.String("email", ""),
			"firstname": inv.String("firstname", ""),
			"lastname":  inv.String("lastname", ""),
		},
	})
}

func (c *Connector) searchContacts(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Post(ctx, inv.Token, "/crm/v3/objects/contacts/search", map[string]any{
		"filterGroups": []any{
			map[string]any{
				"filters": []any{
					map[string]any{
						"propertyName": inv.String("property", ""),
						"operator":     "EQ",
						"value":        inv.String("value", ""),
					},
				},
			},
		},
	})
}

func (c *Connector) listCompanies(ctx context.Context, inv *connector.Invocation) (any, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprint(inv.Int("limit", 10)))
	return c.rest.Get(ctx, inv.Token, "/crm/v3/objects/companies", query)
}

func (c *Connector) createDeal(ctx context.Context, inv *connector.Invocation) (any, error) {
	properties := map[string]any{
		"dealname": inv.String("dealname", ""),
	}
	if amount := inv.String("amount", ""); amount != "" {
		properties["amount"] = amount
	}
	if stage := inv.String("dealstage", ""); stage != "" {
		properties["dealstage"] = stage
	}
	return c.rest.Post(ctx, inv.Token, "/crm/v3/objects/deals", map[string]any{
		"properties": properties,
	})
}

func (c *Connector) updateContact(ctx context.Context, inv *connector.Invocation) (any, error) {
	properties := make(map[string]any)
	for _, prop := range []string{"email", "firstname", "lastname"} {
		if v := inv.String(prop, ""); v != "" {
			properties[prop] = v
		}
	}
	return c.rest.Patch(ctx, inv.Token, "/crm/v3/objects/contacts/"+inv.String("contact_id", ""), map[string]any{
		"properties": properties,
	})
}
