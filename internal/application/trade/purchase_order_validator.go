package trade

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/pharmapos/backend/internal/domain/partner"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ProductLookup resolves order lines against the product catalog.
type ProductLookup interface {
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error)
}

// SupplierLookup resolves the supplier of an order.
type SupplierLookup interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*partner.Supplier, error)
}

// SupplierRef is the resolved supplier link. ID stays nil when the supplier
// could not be resolved.
type SupplierRef struct {
	ID   *uuid.UUID
	Name string
}

// ValidatedPurchaseOrder is the normalized form of a create or update
// request. Nil fields were not part of the request.
type ValidatedPurchaseOrder struct {
	Supplier      *SupplierRef
	Status        *trade.PurchaseOrderStatus
	PaymentStatus *trade.PaymentStatus
	Lines         []trade.PurchaseOrderLine
	Warnings      []string
}

// PurchaseOrderValidator checks request structure, parses numeric input and
// resolves product and supplier references. Unresolved references are
// tolerated and reported as warnings.
type PurchaseOrderValidator struct {
	validate  *validator.Validate
	products  ProductLookup
	suppliers SupplierLookup
}

// NewPurchaseOrderValidator creates a new PurchaseOrderValidator
func NewPurchaseOrderValidator(products ProductLookup, suppliers SupplierLookup) *PurchaseOrderValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("decimal_nonneg", func(fl validator.FieldLevel) bool {
		d, err := parseDecimal(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	_ = v.RegisterValidation("po_status", func(fl validator.FieldLevel) bool {
		_, err := trade.ParsePurchaseOrderStatus(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		_, err := trade.ParsePaymentStatus(fl.Field().String())
		return err == nil
	})

	return &PurchaseOrderValidator{validate: v, products: products, suppliers: suppliers}
}

// ValidateCreate validates a create request.
func (v *PurchaseOrderValidator) ValidateCreate(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseOrderRequest) (*ValidatedPurchaseOrder, error) {
	if err := v.check(req); err != nil {
		return nil, err
	}

	out := &ValidatedPurchaseOrder{}
	if req.Status != "" {
		s, _ := trade.ParsePurchaseOrderStatus(req.Status)
		out.Status = &s
	}
	if req.PaymentStatus != "" {
		p, _ := trade.ParsePaymentStatus(req.PaymentStatus)
		out.PaymentStatus = &p
	}

	if req.SupplierID != nil || strings.TrimSpace(req.SupplierName) != "" {
		ref, err := v.resolveSupplier(ctx, tenantID, req.SupplierID, req.SupplierName, out)
		if err != nil {
			return nil, err
		}
		out.Supplier = ref
	}

	lines, err := v.resolveLines(ctx, tenantID, req.Items, out)
	if err != nil {
		return nil, err
	}
	out.Lines = lines
	return out, nil
}

// ValidateUpdate validates an update request.
func (v *PurchaseOrderValidator) ValidateUpdate(ctx context.Context, tenantID uuid.UUID, req UpdatePurchaseOrderRequest) (*ValidatedPurchaseOrder, error) {
	if err := v.check(req); err != nil {
		return nil, err
	}

	out := &ValidatedPurchaseOrder{}
	if req.Status != nil {
		s, _ := trade.ParsePurchaseOrderStatus(*req.Status)
		out.Status = &s
	}
	if req.PaymentStatus != nil {
		p, _ := trade.ParsePaymentStatus(*req.PaymentStatus)
		out.PaymentStatus = &p
	}

	if req.SupplierID != nil || req.SupplierName != nil {
		name := ""
		if req.SupplierName != nil {
			name = *req.SupplierName
		}
		ref, err := v.resolveSupplier(ctx, tenantID, req.SupplierID, name, out)
		if err != nil {
			return nil, err
		}
		out.Supplier = ref
	}

	if req.Items != nil {
		lines, err := v.resolveLines(ctx, tenantID, req.Items, out)
		if err != nil {
			return nil, err
		}
		out.Lines = lines
	}
	return out, nil
}

// ValidateRename checks the field limits of a rename request
func (v *PurchaseOrderValidator) ValidateRename(req RenamePurchaseOrderRequest) error {
	return v.check(req)
}

func (v *PurchaseOrderValidator) check(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}
	fe := verrs[0]
	return shared.NewValidationError(fieldPath(fe.Namespace()), validationMessage(fe))
}

// fieldPath drops the root struct name: "CreatePurchaseOrderRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "decimal_nonneg":
		return "must be a non-negative number"
	case "po_status":
		return fmt.Sprintf("unknown status %q", fe.Value())
	case "payment_status":
		return fmt.Sprintf("unknown payment status %q", fe.Value())
	default:
		return "is invalid"
	}
}

func (v *PurchaseOrderValidator) resolveLines(ctx context.Context, tenantID uuid.UUID, items []LineItemInput, out *ValidatedPurchaseOrder) ([]trade.PurchaseOrderLine, error) {
	lines := make([]trade.PurchaseOrderLine, 0, len(items))
	for i, item := range items {
		in, err := parseLine(i, item)
		if err != nil {
			return nil, err
		}

		product, err := v.products.FindByCode(ctx, tenantID, in.ProductCode)
		switch {
		case err == nil:
			id := product.ID
			in.ProductID = &id
		case errors.Is(err, shared.ErrNotFound):
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("items[%d]: product code %q not found in catalog; line kept without product link", i, in.ProductCode))
		default:
			return nil, fmt.Errorf("resolve product %q: %w", in.ProductCode, err)
		}

		line, err := trade.NewPurchaseOrderLine(in)
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) && de.Field != "" {
				return nil, shared.NewValidationError(fmt.Sprintf("items[%d].%s", i, de.Field), de.Message)
			}
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

func parseLine(i int, item LineItemInput) (trade.LineInput, error) {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

	qty, err := parseDecimal(item.Quantity)
	if err != nil {
		return trade.LineInput{}, shared.NewValidationError(field("quantity"), "must be a number")
	}
	total, err := parseDecimal(item.TotalCost)
	if err != nil {
		return trade.LineInput{}, shared.NewValidationError(field("total_cost"), "must be a number")
	}

	in := trade.LineInput{
		ProductCode: strings.TrimSpace(item.ProductCode),
		ProductName: strings.TrimSpace(item.ProductName),
		Quantity:    qty,
		TotalCost:   total,
		BatchNumber: item.BatchNumber,
		ExpiryDate:  item.ExpiryDate,
	}
	if in.UnitPrice, err = parseOptionalDecimal(item.UnitPrice); err != nil {
		return trade.LineInput{}, shared.NewValidationError(field("unit_price"), "must be a number")
	}
	if in.PackageQuantity, err = parseOptionalDecimal(item.PackageQuantity); err != nil {
		return trade.LineInput{}, shared.NewValidationError(field("package_quantity"), "must be a number")
	}
	if in.BoxQuantity, err = parseOptionalDecimal(item.BoxQuantity); err != nil {
		return trade.LineInput{}, shared.NewValidationError(field("box_quantity"), "must be a number")
	}
	return in, nil
}

func (v *PurchaseOrderValidator) resolveSupplier(ctx context.Context, tenantID uuid.UUID, id *uuid.UUID, name string, out *ValidatedPurchaseOrder) (*SupplierRef, error) {
	name = NormalizeName(name)

	if id != nil && *id != uuid.Nil {
		supplier, err := v.suppliers.FindByIDForTenant(ctx, tenantID, *id)
		switch {
		case err == nil:
			sid := supplier.ID
			if name == "" {
				name = supplier.Name
			}
			return &SupplierRef{ID: &sid, Name: name}, nil
		case errors.Is(err, shared.ErrNotFound):
			out.Warnings = append(out.Warnings, fmt.Sprintf("supplier %s not found; order kept without supplier link", id))
		default:
			return nil, fmt.Errorf("resolve supplier %s: %w", id, err)
		}
	}

	if name == "" {
		return &SupplierRef{}, nil
	}

	supplier, err := v.suppliers.FindByName(ctx, tenantID, name)
	switch {
	case err == nil:
		sid := supplier.ID
		return &SupplierRef{ID: &sid, Name: supplier.Name}, nil
	case errors.Is(err, shared.ErrNotFound):
		out.Warnings = append(out.Warnings, fmt.Sprintf("supplier %q not found; order kept without supplier link", name))
		return &SupplierRef{Name: name}, nil
	default:
		return nil, fmt.Errorf("resolve supplier %q: %w", name, err)
	}
}

// NormalizeName trims and NFC-normalizes a name for exact matching.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(raw))
}

func parseOptionalDecimal(raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := parseDecimal(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
