package banking

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"agentevals/internal/agent"
)

// Tool names used as tool-call labels.
const (
	ToolTransferFunds     = "transfer_funds"
	ToolPayBill           = "pay_bill"
	ToolUpdateAccountInfo = "update_account_info"
)

// TransferResult confirms a simulated transfer.
type TransferResult struct {
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	FromAccount   string  `json:"from_account"`
	ToAccount     string  `json:"to_account"`
	Message       string  `json:"message"`
}

// PaymentResult confirms a simulated bill payment.
type PaymentResult struct {
	Status        string  `json:"status"`
	PaymentID     string  `json:"payment_id"`
	Amount        float64 `json:"amount"`
	Payee         string  `json:"payee"`
	AccountNumber *string `json:"account_number"`
	Message       string  `json:"message"`
}

// UpdateResult confirms a simulated account update.
type UpdateResult struct {
	Status   string `json:"status"`
	Field    string `json:"field"`
	NewValue string `json:"new_value"`
	Message  string `json:"message"`
}

// Tools returns the operational agent's function tools.
func Tools() []agent.Tool {
	return []agent.Tool{
		{
			Definition: agent.ToolDefinition{
				Name:        ToolTransferFunds,
				Description: "Transfer funds from one account to another.",
				Parameters: schema(map[string]agent.ToolSchema{
					"amount":       agent.NumberSchema("The amount to transfer"),
					"from_account": agent.StringSchema("Source account identifier"),
					"to_account":   agent.StringSchema("Destination account identifier"),
				}, "amount", "from_account", "to_account"),
			},
			Handler: transferFunds,
		},
		{
			Definition: agent.ToolDefinition{
				Name:        ToolPayBill,
				Description: "Pay a bill to a specified payee.",
				Parameters: schema(map[string]agent.ToolSchema{
					"amount":         agent.NumberSchema("The amount to pay"),
					"payee":          agent.StringSchema("Name or identifier of the payee"),
					"account_number": agent.StringSchema("Optional account number for the payee"),
				}, "amount", "payee"),
			},
			Handler: payBill,
		},
		{
			Definition: agent.ToolDefinition{
				Name:        ToolUpdateAccountInfo,
				Description: "Update account information such as address, phone number, or email.",
				Parameters: schema(map[string]agent.ToolSchema{
					"field":     agent.StringSchema(`The field to update (e.g., "address", "phone", "email")`),
					"new_value": agent.StringSchema("The new value for the field"),
				}, "field", "new_value"),
			},
			Handler: updateAccountInfo,
		},
	}
}

func schema(properties map[string]agent.ToolSchema, required ...string) *agent.ToolSchema {
	s := agent.ObjectSchema(properties, required, agent.BoolPointer(false))
	return &s
}

func transferFunds(_ context.Context, args agent.ToolCallArgs) (any, error) {
	amount, err := args.RequiredNumber("amount")
	if err != nil {
		return nil, err
	}
	from, err := args.RequiredString("from_account")
	if err != nil {
		return nil, err
	}
	to, err := args.RequiredString("to_account")
	if err != nil {
		return nil, err
	}
	return TransferResult{
		Status:        "success",
		TransactionID: fmt.Sprintf("TXN_%s_%s_%s", formatAmount(amount), from, to),
		Amount:        amount,
		FromAccount:   from,
		ToAccount:     to,
		Message:       fmt.Sprintf("Successfully transferred $%.2f from %s to %s", amount, from, to),
	}, nil
}

func payBill(_ context.Context, args agent.ToolCallArgs) (any, error) {
	amount, err := args.RequiredNumber("amount")
	if err != nil {
		return nil, err
	}
	payee, err := args.RequiredString("payee")
	if err != nil {
		return nil, err
	}
	result := PaymentResult{
		Status:    "success",
		PaymentID: fmt.Sprintf("PAY_%s_%s", formatAmount(amount), payee),
		Amount:    amount,
		Payee:     payee,
		Message:   fmt.Sprintf("Successfully paid $%.2f to %s", amount, payee),
	}
	if account, ok, err := args.OptionalString("account_number"); err != nil {
		return nil, err
	} else if ok {
		result.AccountNumber = &account
	}
	return result, nil
}

func updateAccountInfo(_ context.Context, args agent.ToolCallArgs) (any, error) {
	field, err := args.RequiredString("field")
	if err != nil {
		return nil, err
	}
	value, err := args.RequiredString("new_value")
	if err != nil {
		return nil, err
	}
	return UpdateResult{
		Status:   "success",
		Field:    field,
		NewValue: value,
		Message:  fmt.Sprintf("Successfully updated %s to %s", field, value),
	}, nil
}

// formatAmount renders whole amounts with a trailing ".0" so ids read "TXN_50.0_…".
func formatAmount(amount float64) string {
	text := strconv.FormatFloat(amount, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}
