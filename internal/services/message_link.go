package services

import (
	"fmt"
	"net/url"
	"strings"

	"pos-storefront-backend/internal/cart"
	"pos-storefront-backend/internal/models"
)

const messagingBaseURL = "https://wa.me/"

type summaryText struct {
	greeting string
	order    string
	items    string
	subtotal string
	shipping string
	total    string
	customer string
	phone    string
	address  string
	notes    string
	comma    string
}

var summaryTexts = map[string]summaryText{
	LangArabic: {
		greeting: "مرحباً، أرغب في طلب المنتجات التالية:",
		order:    "رقم الطلب",
		items:    "عدد القطع",
		subtotal: "المجموع الفرعي",
		shipping: "الشحن",
		total:    "الإجمالي",
		customer: "الاسم",
		phone:    "الجوال",
		address:  "العنوان",
		notes:    "ملاحظات",
		comma:    "، ",
	},
	LangEnglish: {
		greeting: "Hello, I would like to order the following items:",
		order:    "Order number",
		items:    "Items",
		subtotal: "Subtotal",
		shipping: "Shipping",
		total:    "Total",
		customer: "Name",
		phone:    "Phone",
		address:  "Address",
		notes:    "Notes",
		comma:    ", ",
	},
}

func messagingDigits(number string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
}

// MessageLink builds the wa.me deep link carrying text for the store number.
func MessageLink(number, text string) (string, error) {
	digits := messagingDigits(number)
	if digits == "" {
		return "", ErrNoMessagingNumber
	}
	return messagingBaseURL + digits + "?text=" + url.QueryEscape(text), nil
}

// CartSummary renders one line per item followed by the item count and total.
func CartSummary(snapshot cart.Snapshot, lang, currency string) string {
	lang = normalizeLang(lang)
	t := summaryTexts[lang]

	var b strings.Builder
	b.WriteString(t.greeting)
	b.WriteString("\n")
	for _, item := range snapshot.Items {
		fmt.Fprintf(&b, "- %s × %d = %s %s\n",
			item.Product.Title(lang), item.Quantity, item.Total().StringFixed(2), currency)
	}
	fmt.Fprintf(&b, "%s: %d\n", t.items, snapshot.TotalItems)
	fmt.Fprintf(&b, "%s: %s %s", t.total, snapshot.TotalPrice.StringFixed(2), currency)
	return b.String()
}

func itemTitle(item models.OrderItem, lang string) string {
	if lang == LangEnglish && item.NameEn != "" {
		return item.NameEn
	}
	if item.Name == "" {
		return item.NameEn
	}
	return item.Name
}

// OrderSummary is CartSummary for a placed order, with the customer details appended.
func OrderSummary(order *models.Order, lang string) string {
	lang = normalizeLang(lang)
	t := summaryTexts[lang]

	var b strings.Builder
	b.WriteString(t.greeting)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %s\n", t.order, order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s × %d = %s %s\n",
			itemTitle(item, lang), item.Quantity, item.LineTotal.StringFixed(2), order.Currency)
	}
	fmt.Fprintf(&b, "%s: %d\n", t.items, order.ItemCount)
	fmt.Fprintf(&b, "%s: %s %s\n", t.subtotal, order.Subtotal.StringFixed(2), order.Currency)
	fmt.Fprintf(&b, "%s: %s %s\n", t.shipping, order.ShippingFee.StringFixed(2), order.Currency)
	fmt.Fprintf(&b, "%s: %s %s\n", t.total, order.Total.StringFixed(2), order.Currency)
	fmt.Fprintf(&b, "%s: %s\n", t.customer, order.CustomerName)
	fmt.Fprintf(&b, "%s: %s\n", t.phone, order.CustomerPhone)
	fmt.Fprintf(&b, "%s: %s%s%s", t.address, order.City, t.comma, order.Address)
	if order.Notes != "" {
		fmt.Fprintf(&b, "\n%s: %s", t.notes, order.Notes)
	}
	return b.String()
}

func OrderMessageLink(number string, order *models.Order, lang string) (string, error) {
	return MessageLink(number, OrderSummary(order, lang))
}
