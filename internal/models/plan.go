package models

// UnlimitedSubscriptions сигнальное значение квоты "без ограничений".
const UnlimitedSubscriptions = 999999

// Ключи тарифных планов.
const (
	PlanFree             = "free"
	PlanBasic            = "basic"
	PlanPremium          = "premium"
	PlanEnterprise       = "enterprise"
	PlanMonthlyUnlimited = "monthly_unlimited"
	PlanYearlyUnlimited  = "yearly_unlimited"
)

// Plan описывает тарифный план: квоту подписок, срок действия и список
// возможностей. ValidityDays == nil означает бессрочный тариф.
type Plan struct {
	Name             string   `json:"name"`
	Price            string   `json:"price"`
	MaxSubscriptions int      `json:"max_subscriptions"`
	ValidityDays     *int     `json:"validity_days"`
	Features         []string `json:"features"`
}

// PlanOrder задает порядок вывода тарифов, map его не гарантирует.
var PlanOrder = []string{
	PlanFree, PlanBasic, PlanPremium, PlanEnterprise,
	PlanMonthlyUnlimited, PlanYearlyUnlimited,
}

var (
	month = 30
	year  = 365
)

// Plans статическая таблица тарифов. Загружается один раз на старте
// процесса и далее только читается.
var Plans = map[string]Plan{
	PlanFree: {
		Name:             "Free Plan",
		Price:            "₹0 (Lifetime)",
		MaxSubscriptions: 5,
		ValidityDays:     nil,
		Features:         []string{"Up to 5 OTT subscriptions", "Basic reminders", "Telegram + Web access"},
	},
	PlanBasic: {
		Name:             "Basic Plan",
		Price:            "₹299/month",
		MaxSubscriptions: 15,
		ValidityDays:     &month,
		Features:         []string{"Up to 15 OTT subscriptions", "Email reminders", "Priority support"},
	},
	PlanPremium: {
		Name:             "Premium Plan",
		Price:            "₹599/month",
		MaxSubscriptions: 30,
		ValidityDays:     &month,
		Features:         []string{"Up to 30 OTT subscriptions", "Email + SMS reminders", "Data export", "24/7 support"},
	},
	PlanEnterprise: {
		Name:             "Enterprise Plan",
		Price:            "₹999/month",
		MaxSubscriptions: 100,
		ValidityDays:     &month,
		Features:         []string{"Up to 100 subscriptions", "All premium features", "API access", "Custom integration"},
	},
	PlanMonthlyUnlimited: {
		Name:             "Monthly Unlimited",
		Price:            "₹499 (30 Days)",
		MaxSubscriptions: UnlimitedSubscriptions,
		ValidityDays:     &month,
		Features:         []string{"Unlimited OTT subscriptions", "Manager role access", "Email + SMS reminders", "Priority support", "Advanced analytics"},
	},
	PlanYearlyUnlimited: {
		Name:             "Yearly Unlimited",
		Price:            "₹4999 (365 Days)",
		MaxSubscriptions: UnlimitedSubscriptions,
		ValidityDays:     &year,
		Features:         []string{"Unlimited OTT subscriptions", "Manager role access", "Email + SMS reminders", "Priority support", "Advanced analytics", "17% discount vs monthly!"},
	},
}
