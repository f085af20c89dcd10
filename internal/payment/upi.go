// Package payment builds UPI payment intents for approved bookings. It only
// produces the deep link a vendor's UPI app opens; it never observes whether
// the money arrived.
package payment

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrPayeeRequired  = errors.New("upi payee address is required")
	ErrAmountRequired = errors.New("payment amount must be greater than zero")
)

// Payee identifies who receives UPI payments.
type Payee struct {
	VPA  string // virtual payment address, e.g. festopiya@upi
	Name string
}

// Intent is a ready-to-open UPI request.
type Intent struct {
	AmountPaise int64  `json:"amount_paise"`
	Amount      string `json:"amount"`
	Memo        string `json:"memo"`
	Link        string `json:"link"`
}

// StallMemo is the transaction note shown in the payer's UPI app.
func StallMemo(eventName string) string {
	return "Stall Payment for " + strings.TrimSpace(eventName)
}

// NewIntent builds the upi://pay link for amountPaise with memo as the note.
func NewIntent(p Payee, amountPaise int64, memo string) (Intent, error) {
	vpa := strings.TrimSpace(p.VPA)
	if vpa == "" {
		return Intent{}, ErrPayeeRequired
	}
	if amountPaise <= 0 {
		return Intent{}, ErrAmountRequired
	}
	am := decimalRupees(amountPaise)
	// pa is left unescaped: UPI handles contain '@' and apps expect it raw.
	link := "upi://pay?pa=" + vpa +
		"&pn=" + escape(p.Name) +
		"&am=" + am +
		"&tn=" + escape(memo) +
		"&cu=INR"
	return Intent{
		AmountPaise: amountPaise,
		Amount:      FormatRupees(amountPaise),
		Memo:        memo,
		Link:        link,
	}, nil
}

// FormatRupees renders paise as a display amount, e.g. 450000 -> ₹4,500.00,
// grouped the way Indian English writes numbers.
func FormatRupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	p := message.NewPrinter(language.MustParse("en-IN"))
	return fmt.Sprintf("%s₹%s.%02d", sign, p.Sprintf("%d", paise/100), paise%100)
}

// decimalRupees is the machine form used in the am= parameter: no grouping,
// always two decimals.
func decimalRupees(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}

// escape percent-encodes s for a query value using %20 for spaces, which UPI
// apps decode more reliably than '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
