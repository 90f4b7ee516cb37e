package checkout

import (
	"regexp"
	"strings"

	"campusmarket/model"
)

// Form carries everything the checkout page submits. Address fields matter
// only when shipping; card fields only when paying by card.
type Form struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`

	DeliveryOption model.DeliveryOption `json:"delivery_option"`
	Address        string               `json:"address"`
	City           string               `json:"city"`
	State          string               `json:"state"`
	ZipCode        string               `json:"zip_code"`

	PaymentMethod model.PaymentMethod `json:"payment_method"`
	CardName      string              `json:"card_name"`
	CardNumber    string              `json:"card_number"`
	CardExpiry    string              `json:"card_expiry"`
	CardCvc       string              `json:"card_cvc"`

	AgreeToTerms bool `json:"agree_to_terms"`
}

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipRe    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvcRe    = regexp.MustCompile(`^\d{3,4}$`)
	digitsRe = regexp.MustCompile(`^\d{16}$`)
)

// Validate returns a field-keyed error map; an empty map means the form is
// valid. The address block is required iff delivery is SHIP, card fields iff
// paying by card, and the borrow terms checkbox iff the cart holds at least
// one borrow line.
func Validate(form Form, snapshot []model.CartItem) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(form.FirstName) == "" {
		errs["firstName"] = "first name is required"
	}
	if strings.TrimSpace(form.LastName) == "" {
		errs["lastName"] = "last name is required"
	}
	switch {
	case strings.TrimSpace(form.Email) == "":
		errs["email"] = "email is required"
	case !emailRe.MatchString(form.Email):
		errs["email"] = "email is invalid"
	}

	switch form.DeliveryOption {
	case model.DeliveryShip:
		if strings.TrimSpace(form.Address) == "" {
			errs["address"] = "address is required"
		}
		if strings.TrimSpace(form.City) == "" {
			errs["city"] = "city is required"
		}
		if strings.TrimSpace(form.State) == "" {
			errs["state"] = "state is required"
		}
		switch {
		case strings.TrimSpace(form.ZipCode) == "":
			errs["zipCode"] = "zip code is required"
		case !zipRe.MatchString(form.ZipCode):
			errs["zipCode"] = "zip code must be 5 digits or ZIP+4"
		}
	case model.DeliveryPickup:
		// no address block
	default:
		errs["deliveryOption"] = "delivery option is invalid"
	}

	switch form.PaymentMethod {
	case model.PaymentCard:
		if strings.TrimSpace(form.CardName) == "" {
			errs["cardName"] = "name on card is required"
		}
		digits := strings.NewReplacer(" ", "", "-", "").Replace(form.CardNumber)
		if !digitsRe.MatchString(digits) {
			errs["cardNumber"] = "card number must be 16 digits"
		}
		if !expiryRe.MatchString(form.CardExpiry) {
			errs["cardExpiry"] = "expiry must be MM/YY"
		}
		if !cvcRe.MatchString(form.CardCvc) {
			errs["cardCvc"] = "CVC must be 3 or 4 digits"
		}
	case model.PaymentPickup:
	default:
		errs["paymentMethod"] = "payment method is invalid"
	}

	if hasBorrow(snapshot) && !form.AgreeToTerms {
		errs["agreeToTerms"] = "you must agree to the borrowing terms"
	}

	return errs
}

func hasBorrow(items []model.CartItem) bool {
	for _, it := range items {
		if it.Mode == model.ModeBorrow {
			return true
		}
	}
	return false
}
