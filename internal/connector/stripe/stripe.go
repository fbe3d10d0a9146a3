// Package stripe exposes the Stripe API as connector tools. Stripe uses a
// static secret key rather than OAuth, so there is no token lifecycle.
package stripe

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gumcp/gumcp-go/internal/connector"
)

const (
	providerName = "stripe"
	apiBaseURL   = "https://api.stripe.com"
)

// Connector is the Stripe provider integration.
type Connector struct {
	rest *connector.RESTClient
}

// New creates the Stripe connector.
func New(opts ...connector.RESTOption) *Connector {
	return &Connector{
		rest: connector.NewRESTClient(providerName, apiBaseURL, opts...),
	}
}

func (c *Connector) Descriptor() connector.Descriptor {
	return connector.Descriptor{
		Name:     providerName,
		AuthKind: connector.AuthAPIKey,
	}
}

func (c *Connector) Tools() []connector.Tool {
	return []connector.Tool{
		{
			Name:        "list_customers",
			Description: "List customers",
			Parameters: []connector.Param{
				{Name: "limit", Type: connector.ParamNumber, Description: "Maximum customers to return (default 10)"},
				{Name: "email", Type: connector.ParamString, Description: "Filter by exact email"},
			},
		},
		{
			Name:        "create_customer",
			Description: "Create a customer",
			Parameters: []connector.Param{
				{Name: "email", Type: connector.ParamString, Description: "Customer email", Required: true},
				{Name: "name", Type: connector.ParamString, Description: "Customer name"},
				{Name: "description", Type: connector.ParamString, Description: "Arbitrary description"},
			},
		},
		{
			Name:        "retrieve_customer",
			Description: "Retrieve a customer by ID",
			Parameters: []connector.Param{
				{Name: "customer_id", Type: connector.ParamString, Description: "Customer ID (cus_...)", Required: true},
			},
		},
		{
			Name:        "list_charges",
			Description: "List charges",
			Parameters: []connector.Param{
				{Name: "limit", Type: connector.ParamNumber, Description: "Maximum charges to return (default 10)"},
				{Name: "customer_id", Type: connector.ParamString, Description: "Filter by customer"},
			},
		},
		{
			Name:        "create_invoice",
			Description: "Create a draft invoice for a customer",
			Parameters: []connector.Param{
				{Name: "customer_id", Type: connector.ParamString, Description: "Customer ID (cus_...)", Required: true},
				{Name: "description", Type: connector.ParamString, Description: "Invoice memo"},
			},
		},
		{
			Name:        "list_products",
			Description: "List products",
			Parameters: []connector.Param{
				{Name: "limit", Type: connector.ParamNumber, Description: "Maximum products to return (default 10)"},
				{Name: "active", Type: connector.ParamBoolean, Description: "Only active products"},
			},
		},
		{
			Name:        "retrieve_balance",
			Description: "Retrieve the current account balance",
		},
	}
}

func (c *Connector) Handler(tool string) (connector.Handler, bool) {
	switch tool {
	case "list_customers":
		return c.listCustomers, true
	case "create_customer":
		return c.createCustomer, true
	case "retrieve_customer":
		return c.retrieveCustomer, true
	case "list_charges":
		return c.listCharges, true
	case "create_invoice":
		return c.createInvoice, true
	case "list_products":
		return c.listProducts, true
	case "retrieve_balance":
		return c.retrieveBalance, true
	}
	return nil, false
}

func (c *Connector) Resources() []connector.Resource { return nil }

func (c *Connector) listCustomers(ctx context.Context, inv *connector.Invocation) (any, error) {
	q := url.Values{"limit": {strconv.Itoa(inv.Int("limit", 10))}}
	if email := inv.String("email", ""); email != "" {
		q.Set("email", email)
	}
	return c.rest.Get(ctx, inv.Token, "/v1/customers", q)
}

func (c *Connector) createCustomer(ctx context.Context, inv *connector.Invocation) (any, error) {
	form := url.Values{"email": {inv.String("email", "")}}
	if name := inv.String("name", ""); name != "" {
		form.Set("name", name)
	}
	if desc := inv.String("description", ""); desc != "" {
		form.Set("description", desc)
	}
	return c.rest.PostForm(ctx, inv.Token, "/v1/customers", form)
}

func (c *Connector) retrieveCustomer(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Get(ctx, inv.Token, "/v1/customers/"+inv.String("customer_id", ""), nil)
}

func (c *Connector) listCharges(ctx context.Context, inv *connector.Invocation) (any, error) {
	q := url.Values{"limit": {strconv.Itoa(inv.Int("limit", 10))}}
	if cust := inv.String("customer_id", ""); cust != "" {
		q.Set("customer", cust)
	}
	return c.rest.Get(ctx, inv.Token, "/v1/charges", q)
}

func (c *Connector) createInvoice(ctx context.Context, inv *connector.Invocation) (any, error) {
	form := url.Values{"customer": {inv.String("customer_id", "")}}
	if desc := inv.String("description", ""); desc != "" {
		form.Set("description", desc)
	}
	return c.rest.PostForm(ctx, inv.Token, "/v1/invoices", form)
}

func (c *Connector) listProducts(ctx context.Context, inv *connector.Invocation) (any, error) {
	q := url.Values{"limit": {strconv.Itoa(inv.Int("limit", 10))}}
	if inv.Bool("active", false) {
		q.Set("active", "true")
	}
	return c.rest.Get(ctx, inv.Token, "/v1/products", q)
}

func (c *Connector) retrieveBalance(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Get(ctx, inv.Token, "/v1/balance", nil)
}
