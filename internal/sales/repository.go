package sales

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/payments"
	"github.com/craftline-erp/craftline/internal/platform/db"
	"github.com/craftline-erp/craftline/internal/shared"
)

const orderColumns = `id, order_number, customer_name, customer_contact, customer_email, customer_address,
gst_number, gst_verified, gst_business_name, showroom_product_id,
unit_price, quantity, discount_amount, transport_cost, final_amount, amount_paid, balance_amount,
delivery_type, order_status, payment_status, approval_status, after_sales_status, finance_bypass,
coupon_code, coupon_reason, driver_name, driver_phone, driver_vehicle_number,
created_by, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for sales orders and
// their payments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new sales order.
func (r *Repository) Create(ctx context.Context, order Order) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sales_orders (`+orderColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)`,
		order.ID, order.OrderNumber, order.CustomerName, order.CustomerContact, order.CustomerEmail, order.CustomerAddress,
		order.GSTNumber, order.GSTVerified, order.GSTBusinessName, order.ShowroomProductID,
		order.UnitPrice, order.Quantity, order.DiscountAmount, order.TransportCost, order.FinalAmount, order.AmountPaid, order.BalanceAmount,
		string(order.DeliveryType), string(order.OrderStatus), string(order.PaymentStatus), string(order.ApprovalStatus), string(order.AfterSalesStatus), order.FinanceBypass,
		order.CouponCode, order.CouponReason, order.DriverName, order.DriverPhone, order.DriverVehicleNumber,
		order.CreatedBy, order.CreatedAt, order.UpdatedAt)
	return err
}

// Get returns a sales order by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM sales_orders WHERE id=$1`, id)
	return scanOrder(row)
}

// GetByNumber returns a sales order by its order number.
func (r *Repository) GetByNumber(ctx context.Context, number string) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM sales_orders WHERE order_number=$1`, number)
	return scanOrder(row)
}

// List returns sales orders, newest first.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM sales_orders ORDER BY created_at DESC`)
}

// Search matches orders by order number or customer name fragment.
func (r *Repository) Search(ctx context.Context, term string) ([]Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM sales_orders
WHERE order_number ILIKE '%'||$1||'%' OR customer_name ILIKE '%'||$1||'%'
ORDER BY created_at DESC`, term)
}

// Rewrite replaces the editable fields of an order. The payment_status
// predicate enforces that edits only land while payment is still pending.
func (r *Repository) Rewrite(ctx context.Context, order Order) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_orders SET
customer_name=$1, customer_contact=$2, customer_email=$3, customer_address=$4,
unit_price=$5, quantity=$6, discount_amount=$7, transport_cost=$8,
final_amount=$9, balance_amount=$10, delivery_type=$11, order_status=$12, updated_at=$13
WHERE id=$14 AND payment_status=$15`,
		order.CustomerName, order.CustomerContact, order.CustomerEmail, order.CustomerAddress,
		order.UnitPrice, order.Quantity, order.DiscountAmount, order.TransportCost,
		order.FinalAmount, order.BalanceAmount, string(order.DeliveryType), string(order.OrderStatus), time.Now(),
		order.ID, string(PaymentPending))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, order.ID, tag.RowsAffected())
}

// ApplyPayment records a payment row and moves the payment totals and status
// in one transaction, compare-and-set on the previous payment status.
func (r *Repository) ApplyPayment(ctx context.Context, orderID uuid.UUID, expected, next lifecycle.Status, payment payments.Payment, amountPaid, balance decimal.Decimal) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE sales_orders SET amount_paid=$1, balance_amount=$2, payment_status=$3, updated_at=$4
WHERE id=$5 AND payment_status=$6`,
			amountPaid, balance, string(next), time.Now(), orderID, string(expected))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return r.casOutcome(ctx, orderID, 0)
		}
		denominations, err := json.Marshal(payment.Denominations)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO sales_payments
(id, order_id, total_amount, received_amount, method, denominations, split_cash, split_online, utr_reference, handled_by, received_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			payment.ID, payment.OrderID, payment.TotalAmount, payment.ReceivedAmount, string(payment.Method),
			denominations, payment.SplitCash, payment.SplitOnline, payment.UTRReference, payment.HandledBy, payment.ReceivedAt)
		return err
	})
}

// ListPayments returns the recorded payments of an order, oldest first.
func (r *Repository) ListPayments(ctx context.Context, orderID uuid.UUID) ([]payments.Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, total_amount, received_amount, method, denominations, split_cash, split_online, utr_reference, handled_by, received_at
FROM sales_payments WHERE order_id=$1 ORDER BY received_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []payments.Payment
	for rows.Next() {
		var p payments.Payment
		var method string
		var denominations []byte
		if err := rows.Scan(&p.ID, &p.OrderID, &p.TotalAmount, &p.ReceivedAmount, &method,
			&denominations, &p.SplitCash, &p.SplitOnline, &p.UTRReference, &p.HandledBy, &p.ReceivedAt); err != nil {
			return nil, err
		}
		p.Method = payments.Method(method)
		if len(denominations) > 0 {
			if err := json.Unmarshal(denominations, &p.Denominations); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CASPaymentStatus transitions payment status only from the expected value.
func (r *Repository) CASPaymentStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_orders SET payment_status=$1, updated_at=$2 WHERE id=$3 AND payment_status=$4`,
		string(next), time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// CASOrderStatus transitions order status only from the expected value.
func (r *Repository) CASOrderStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_orders SET order_status=$1, updated_at=$2 WHERE id=$3 AND order_status=$4`,
		string(next), time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// SetCoupon stores a coupon request and raises the administrative approval
// gate in one write, guarded so only one request can be pending at a time.
func (r *Repository) SetCoupon(ctx context.Context, id uuid.UUID, code, reason string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_orders SET coupon_code=$1, coupon_reason=$2, approval_status=$3, updated_at=$4
WHERE id=$5 AND approval_status<>$3`,
		code, reason, string(ApprovalPending), time.Now(), id)
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// SetApprovalDecision resolves a pending coupon approval. Approval flips the
// finance bypass flag; rejection clears the coupon.
func (r *Repository) SetApprovalDecision(ctx context.Context, id uuid.UUID, next ApprovalStatus, financeBypass bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_orders SET approval_status=$1, finance_bypass=$2,
coupon_code = CASE WHEN $2 THEN coupon_code ELSE '' END,
coupon_reason = CASE WHEN $2 THEN coupon_reason ELSE '' END,
updated_at=$3 WHERE id=$4 AND approval_status=$5`,
		string(next), financeBypass, time.Now(), id, string(ApprovalPending))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// SetDriverDetails records the customer's driver for self delivery.
func (r *Repository) SetDriverDetails(ctx context.Context, id uuid.UUID, name, phone, vehicleNumber string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_orders SET driver_name=$1, driver_phone=$2, driver_vehicle_number=$3, updated_at=$4 WHERE id=$5`,
		name, phone, vehicleNumber, time.Now(), id)
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// ApplyDemand overwrites the transport cost and the derived amounts after
// the customer accepts a transport demand, keyed by order number.
func (r *Repository) ApplyDemand(ctx context.Context, number string, transportCost, finalAmount, balance decimal.Decimal, next lifecycle.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_orders SET transport_cost=$1, final_amount=$2, balance_amount=$3, order_status=$4, updated_at=$5
WHERE order_number=$6 AND order_status=$7`,
		transportCost, finalAmount, balance, string(next), time.Now(), number, string(StatusPendingTransportApproval))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByNumber(ctx, number); err != nil {
		return err
	}
	return shared.ErrConflict
}

// CASOrderStatusByNumber is CASOrderStatus keyed by order number, used by
// transport callbacks which never see the order id.
func (r *Repository) CASOrderStatusByNumber(ctx context.Context, number string, expected, next lifecycle.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_orders SET order_status=$1, updated_at=$2 WHERE order_number=$3 AND order_status=$4`,
		string(next), time.Now(), number, string(expected))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByNumber(ctx, number); err != nil {
		return err
	}
	return shared.ErrConflict
}

// CASAfterSales performs the one-way dispatch handoff mark.
func (r *Repository) CASAfterSales(ctx context.Context, id uuid.UUID, expected, next AfterSalesStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sales_orders SET after_sales_status=$1, updated_at=$2 WHERE id=$3 AND after_sales_status=$4`,
		string(next), time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// SetGSTResult stores the outcome of a tax registry lookup.
func (r *Repository) SetGSTResult(ctx context.Context, id uuid.UUID, verified bool, businessName string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sales_orders SET gst_verified=$1, gst_business_name=$2, updated_at=$3 WHERE id=$4`,
		verified, businessName, time.Now(), id)
	return err
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *Repository) casOutcome(ctx context.Context, id uuid.UUID, affected int64) error {
	if affected > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return shared.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var order Order
	var deliveryType, orderStatus, paymentStatus, approvalStatus, afterSales string
	err := row.Scan(&order.ID, &order.OrderNumber, &order.CustomerName, &order.CustomerContact, &order.CustomerEmail, &order.CustomerAddress,
		&order.GSTNumber, &order.GSTVerified, &order.GSTBusinessName, &order.ShowroomProductID,
		&order.UnitPrice, &order.Quantity, &order.DiscountAmount, &order.TransportCost, &order.FinalAmount, &order.AmountPaid, &order.BalanceAmount,
		&deliveryType, &orderStatus, &paymentStatus, &approvalStatus, &afterSales, &order.FinanceBypass,
		&order.CouponCode, &order.CouponReason, &order.DriverName, &order.DriverPhone, &order.DriverVehicleNumber,
		&order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, shared.ErrNotFound
		}
		return Order{}, err
	}
	order.DeliveryType = DeliveryType(deliveryType)
	order.OrderStatus = lifecycle.Status(orderStatus)
	order.PaymentStatus = lifecycle.Status(paymentStatus)
	order.ApprovalStatus = ApprovalStatus(approvalStatus)
	order.AfterSalesStatus = AfterSalesStatus(afterSales)
	return order, nil
}
