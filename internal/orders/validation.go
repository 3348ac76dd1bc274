package orders

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/catalog"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/inventory"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/loyalty"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
)

var (
	gcashReference    = regexp.MustCompile(`^\d{13}$`)
	discountTolerance = decimal.RequireFromString("0.01")
	hundred           = decimal.NewFromInt(100)
)

// cartPlan is everything the commit step needs, computed before any write.
type cartPlan struct {
	variants     map[catalog.Key]catalog.Variant
	demand       map[catalog.Key]int
	keys         []catalog.Key
	subtotal     decimal.Decimal
	pointsEarned int
	freeItem     *FreeItem
}

func (s *service) validateCart(ctx context.Context, input CreateOrderInput) (*cartPlan, error) {
	if err := s.validateFields(ctx, input); err != nil {
		return nil, err
	}

	plan, err := s.validateItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	if err := s.validateDiscount(ctx, input, plan.subtotal); err != nil {
		return nil, err
	}

	if input.RedeemLoyalty {
		free, err := s.validateRedemption(ctx, input, plan)
		if err != nil {
			return nil, err
		}
		plan.freeItem = free
	}

	for _, key := range plan.keys {
		if v := plan.variants[key]; v.StockQty < plan.demand[key] {
			return nil, inventory.InsufficientStock(key.ProductID, key.Size, plan.demand[key], v.StockQty)
		}
	}

	if input.CustomerID != nil {
		plan.pointsEarned = loyalty.PointsEarned(input.TotalAmount)
	}
	return plan, nil
}

func (s *service) validateFields(ctx context.Context, input CreateOrderInput) error {
	missing := []string{}
	required := map[string]string{
		"orderNumber":     input.OrderNumber,
		"deliveryName":    input.Delivery.Name,
		"deliveryPhone":   input.Delivery.Phone,
		"deliveryEmail":   input.Delivery.Email,
		"deliveryAddress": input.Delivery.Address,
		"deliveryCity":    input.Delivery.City,
		"deliveryZipcode": input.Delivery.Zipcode,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return validationError("required fields missing", map[string]any{"fields": missing})
	}

	if !input.TotalAmount.IsPositive() {
		return validationError("totalAmount must be greater than zero", nil)
	}
	if input.DiscountAmount.IsNegative() {
		return validationError("discountAmount must not be negative", nil)
	}
	if !wholeCentavos(input.TotalAmount) || !wholeCentavos(input.DiscountAmount) {
		return validationError("amounts must have at most two decimal places", nil)
	}
	if !input.PaymentMethod.IsValid() {
		return validationError("unsupported payment method", map[string]any{"paymentMethod": input.PaymentMethod})
	}
	if input.PaymentMethod.RequiresReference() {
		ref := ""
		if input.PaymentReference != nil {
			ref = strings.TrimSpace(*input.PaymentReference)
		}
		if !gcashReference.MatchString(ref) {
			return validationError("GCash reference must be exactly 13 digits", nil)
		}
	}
	if !strings.EqualFold(strings.TrimSpace(input.Delivery.City), s.serviceCity) {
		return validationError("delivery is only available in "+s.serviceCity, map[string]any{"deliveryCity": input.Delivery.City})
	}
	if len(input.Items) == 0 {
		return validationError("order must contain at least one item", nil)
	}

	exists, err := s.repo.ExistsByOrderNumber(ctx, strings.TrimSpace(input.OrderNumber))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "check order number")
	}
	if exists {
		return duplicateOrderNumber(input.OrderNumber)
	}
	return nil
}

func (s *service) validateItems(ctx context.Context, items []LineItemInput) (*cartPlan, error) {
	plan := &cartPlan{demand: map[catalog.Key]int{}, subtotal: decimal.Zero}
	for i, item := range items {
		details := map[string]any{"index": i, "productId": item.ProductID, "size": item.Size}
		if item.ProductID <= 0 {
			return nil, validationError("item references an unknown product", details)
		}
		if !item.Size.IsValid() {
			return nil, validationError("item size must be Small, Medium or Large", details)
		}
		if item.Quantity <= 0 {
			return nil, validationError("item quantity must be positive", details)
		}
		if !item.UnitPrice.IsPositive() {
			return nil, validationError("item price must be positive", details)
		}
		if !wholeCentavos(item.UnitPrice) {
			return nil, validationError("item price must have at most two decimal places", details)
		}
		key := catalog.Key{ProductID: item.ProductID, Size: item.Size}
		if _, seen := plan.demand[key]; !seen {
			plan.keys = append(plan.keys, key)
		}
		plan.demand[key] += item.Quantity
		plan.subtotal = plan.subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	variants, err := s.catalog.FindVariants(ctx, plan.keys)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load catalog variants")
	}
	for _, key := range plan.keys {
		v, ok := variants[key]
		if !ok || !v.IsActive {
			return nil, validationError("product is not available", map[string]any{"productId": key.ProductID, "size": key.Size})
		}
	}
	plan.variants = variants

	sortKeys(plan.keys)
	return plan, nil
}

// validateDiscount checks the discount against the promo-derived value only;
// loyalty redemption never contributes to discountAmount.
func (s *service) validateDiscount(ctx context.Context, input CreateOrderInput, subtotal decimal.Decimal) error {
	code := ""
	if input.PromoCode != nil {
		code = strings.TrimSpace(*input.PromoCode)
	}
	if code == "" {
		if input.DiscountAmount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeInvalidDiscount, "discount requires a promo code")
		}
		return nil
	}

	promo, err := s.catalog.FindActivePromo(ctx, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load promo code")
	}
	if promo == nil {
		return pkgerrors.New(pkgerrors.CodeInvalidDiscount, "promo code is not valid").
			WithDetails(map[string]any{"promoCode": code})
	}

	expected := PromoDiscount(subtotal, promo.DiscountPercent)
	if input.DiscountAmount.Sub(expected).Abs().GreaterThan(discountTolerance) {
		return pkgerrors.New(pkgerrors.CodeInvalidDiscount, "discount does not match promo code").
			WithDetails(map[string]any{
				"promoCode": code,
				"expected":  expected.StringFixed(2),
				"received":  input.DiscountAmount.StringFixed(2),
			})
	}
	return nil
}

func (s *service) validateRedemption(ctx context.Context, input CreateOrderInput, plan *cartPlan) (*FreeItem, error) {
	if input.CustomerID == nil {
		return nil, validationError("guest orders cannot redeem loyalty points", nil)
	}
	profile, err := s.loyalty.FindProfile(ctx, *input.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load loyalty profile")
	}
	balance := 0
	if profile != nil {
		balance = profile.PointsBalance
	}
	if balance < loyalty.RedemptionCost {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientLoyalty, "at least 100 loyalty points are required").
			WithDetails(map[string]any{"balance": balance, "required": loyalty.RedemptionCost})
	}

	free := cheapestCoffee(input.Items, plan.variants)
	if free == nil {
		return nil, validationError("loyalty redemption requires a coffee item", nil)
	}
	return free, nil
}

// PromoDiscount is round(subtotal * percent / 100, 2).
func PromoDiscount(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred).Round(2)
}

func wholeCentavos(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

func cheapestCoffee(items []LineItemInput, variants map[catalog.Key]catalog.Variant) *FreeItem {
	var free *FreeItem
	for _, item := range items {
		v, ok := variants[catalog.Key{ProductID: item.ProductID, Size: item.Size}]
		if !ok || !v.IsCoffee() {
			continue
		}
		if free == nil || item.UnitPrice.LessThan(free.UnitPrice) {
			free = &FreeItem{ProductID: item.ProductID, Size: item.Size, UnitPrice: item.UnitPrice}
		}
	}
	return free
}

// sortKeys orders reservations so concurrent orders lock counters in the same sequence.
func sortKeys(keys []catalog.Key) {
	sizeRank := map[enums.ProductSize]int{}
	for i, size := range enums.ProductSizes() {
		sizeRank[size] = i
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		return sizeRank[keys[i].Size] < sizeRank[keys[j].Size]
	})
}

func validationError(message string, details map[string]any) error {
	err := pkgerrors.New(pkgerrors.CodeValidation, message)
	if details != nil {
		return err.WithDetails(details)
	}
	return err
}

func duplicateOrderNumber(orderNumber string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "order number already exists").
		WithDetails(map[string]any{"orderNumber": orderNumber})
}
