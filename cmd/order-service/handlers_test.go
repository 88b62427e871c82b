package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
	"github.com/MikeMC777/fulfillment-ecom/internal/metrics"
	"github.com/MikeMC777/fulfillment-ecom/internal/notify"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
	"github.com/MikeMC777/fulfillment-ecom/internal/product"
	"github.com/MikeMC777/fulfillment-ecom/internal/service"
	"github.com/MikeMC777/fulfillment-ecom/internal/store/memory"
	"github.com/MikeMC777/fulfillment-ecom/internal/user"
)

const (
	alice int64 = 1
	bob   int64 = 2
	admin int64 = 9
)

type env struct {
	st      *memory.Store
	r       *gin.Engine
	shirt   product.Product
	address user.Address
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	shirt := st.PutProduct(product.Product{Name: "Shirt", Price: decimal.RequireFromString("10.00"), StockQuantity: 3})
	addr := st.PutAddress(user.Address{UserID: alice, Line: "Main St 1", City: "Lima", Country: "PE"})

	perms := service.StaticPermissions{Roles: map[int64]string{alice: "user", bob: "user", admin: "admin"}}
	log := zap.NewNop()
	m := metrics.New(prometheus.NewRegistry(), "order-service-test")
	a := api{
		carts:    service.NewCartService(st, perms, cart.NoopCache{}, log),
		checkout: service.NewCheckout(st, cart.NoopCache{}, m, log, 5*time.Second),
		orders:   service.NewOrderService(st, perms, notify.NewLogDispatcher(log), m, log),
	}

	r := gin.New()
	registerRoutes(r, a)
	return &env{st: st, r: r, shirt: shirt, address: addr}
}

func (e *env) do(t *testing.T, caller int64, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, buf)
	req.Header.Set("Content-Type", "application/json")
	if caller > 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(caller, 10))
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, w.Body.String())
	}
	return body.Error
}

// checkout fills alice's cart with qty shirts and places the order.
func (e *env) checkout(t *testing.T, qty int) order.Detail {
	t.Helper()
	w := e.do(t, alice, http.MethodPost, "/cart/items",
		`{"product_id":`+strconv.FormatInt(e.shirt.ID, 10)+`,"quantity":`+strconv.Itoa(qty)+`}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add to cart: status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.do(t, alice, http.MethodPost, "/orders",
		`{"address_id":`+strconv.FormatInt(e.address.ID, 10)+`,"shipping_method":"courier","payment_method":"card"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout: status=%d body=%s", w.Code, w.Body.String())
	}
	var d order.Detail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return d
}

func TestMissingCallerIsUnauthenticated(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, 0, http.MethodGet, "/orders", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := errorCode(t, w); got != "unauthenticated" {
		t.Fatalf("error=%q", got)
	}
}

func TestCreateOrder_HappyPath(t *testing.T) {
	e := newEnv(t)
	d := e.checkout(t, 2)

	if d.Status != order.StatusPending || len(d.Items) != 1 {
		t.Fatalf("unexpected order: %+v", d)
	}
	if !d.TotalAmount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("total=%s", d.TotalAmount)
	}
	if p, _ := e.st.Product(e.shirt.ID); p.StockQuantity != 1 {
		t.Fatalf("stock=%d, want 1", p.StockQuantity)
	}

	// the cart survives, empty
	w := e.do(t, alice, http.MethodGet, "/cart", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var v cart.View
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if len(v.Items) != 0 {
		t.Fatalf("cart not emptied: %+v", v.Items)
	}
}

func TestCreateOrder_Rejections(t *testing.T) {
	e := newEnv(t)

	// empty cart
	if w := e.do(t, alice, http.MethodPost, "/cart", ""); w.Code != http.StatusOK {
		t.Fatalf("open cart: status=%d body=%s", w.Code, w.Body.String())
	}
	body := `{"address_id":` + strconv.FormatInt(e.address.ID, 10) + `,"shipping_method":"courier","payment_method":"card"}`
	w := e.do(t, alice, http.MethodPost, "/orders", body)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "cart_empty" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	// more than the stock
	w = e.do(t, alice, http.MethodPost, "/cart/items", `{"product_id":`+strconv.FormatInt(e.shirt.ID, 10)+`,"quantity":4}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.do(t, alice, http.MethodPost, "/orders", body)
	if w.Code != http.StatusConflict || errorCode(t, w) != "not_all_products_available" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	// malformed body
	w = e.do(t, alice, http.MethodPost, "/orders", `{`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetOrder_Authorization(t *testing.T) {
	e := newEnv(t)
	d := e.checkout(t, 1)
	path := "/orders/" + strconv.FormatInt(d.ID, 10)

	if w := e.do(t, alice, http.MethodGet, path, ""); w.Code != http.StatusOK {
		t.Fatalf("owner: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(t, bob, http.MethodGet, path, ""); w.Code != http.StatusForbidden {
		t.Fatalf("other user: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(t, admin, http.MethodGet, path, ""); w.Code != http.StatusOK {
		t.Fatalf("admin: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(t, alice, http.MethodGet, "/orders/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status=%d", w.Code)
	}
	if w := e.do(t, alice, http.MethodGet, "/orders/999", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}
}

func TestListOrders(t *testing.T) {
	e := newEnv(t)
	e.checkout(t, 1)

	w := e.do(t, alice, http.MethodGet, "/orders?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Limit int            `json:"limit"`
		Items []order.Detail `json:"items"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Limit != 5 || len(got.Items) != 1 || len(got.Items[0].Items) != 1 {
		t.Fatalf("unexpected list: %+v", got)
	}

	if w := e.do(t, bob, http.MethodGet, "/orders?user_id=1", ""); w.Code != http.StatusForbidden {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(t, alice, http.MethodGet, "/orders?user_id=x", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateStatus_CancelRestocksAndIsTerminal(t *testing.T) {
	e := newEnv(t)
	d := e.checkout(t, 2)
	path := "/orders/" + strconv.FormatInt(d.ID, 10) + "/status"

	w := e.do(t, alice, http.MethodPatch, path, `{"status":"cancelled"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var ch order.StatusChange
	_ = json.Unmarshal(w.Body.Bytes(), &ch)
	if ch.OldStatus != order.StatusPending || ch.NewStatus != order.StatusCancelled {
		t.Fatalf("change=%+v", ch)
	}
	if p, _ := e.st.Product(e.shirt.ID); p.StockQuantity != 3 {
		t.Fatalf("stock=%d, want 3", p.StockQuantity)
	}

	w = e.do(t, alice, http.MethodPatch, path, `{"status":"paid"}`)
	if w.Code != http.StatusConflict || errorCode(t, w) != "order_cancelled" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.do(t, alice, http.MethodPatch, path, `{"status":"lost"}`)
	if w.Code == http.StatusOK {
		t.Fatalf("unknown status accepted: %s", w.Body.String())
	}
}

func TestEditAndDeleteOrder(t *testing.T) {
	e := newEnv(t)
	d := e.checkout(t, 1)
	path := "/orders/" + strconv.FormatInt(d.ID, 10)

	w := e.do(t, alice, http.MethodPatch, path, `{"shipping_method":"pickup"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var o order.Order
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if o.ShippingMethod != "pickup" || o.PaymentMethod != "card" {
		t.Fatalf("patch not applied: %+v", o)
	}

	if w := e.do(t, alice, http.MethodPatch, path+"/status", `{"status":"paid"}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.do(t, alice, http.MethodDelete, path, "")
	if w.Code != http.StatusConflict || errorCode(t, w) != "order_cannot_be_deleted" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestDeletePendingOrder(t *testing.T) {
	e := newEnv(t)
	d := e.checkout(t, 2)

	w := e.do(t, alice, http.MethodDelete, "/orders/"+strconv.FormatInt(d.ID, 10), "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if p, _ := e.st.Product(e.shirt.ID); p.StockQuantity != 3 {
		t.Fatalf("stock=%d, want 3", p.StockQuantity)
	}
}

func TestOrderItems(t *testing.T) {
	e := newEnv(t)
	d := e.checkout(t, 1)
	itemPath := "/order-items/" + strconv.FormatInt(d.Items[0].ID, 10)

	if w := e.do(t, alice, http.MethodGet, "/order-items", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing order_id: status=%d", w.Code)
	}
	w := e.do(t, alice, http.MethodGet, "/order-items?order_id="+strconv.FormatInt(d.ID, 10), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = e.do(t, alice, http.MethodPatch, itemPath, `{"quantity":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got order.Detail
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if !got.TotalAmount.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("total=%s", got.TotalAmount)
	}
	if p, _ := e.st.Product(e.shirt.ID); p.StockQuantity != 0 {
		t.Fatalf("stock=%d, want 0", p.StockQuantity)
	}

	w = e.do(t, alice, http.MethodDelete, itemPath, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var o order.Order
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if !o.TotalAmount.IsZero() {
		t.Fatalf("total=%s, want 0", o.TotalAmount)
	}
	if p, _ := e.st.Product(e.shirt.ID); p.StockQuantity != 3 {
		t.Fatalf("stock=%d, want 3", p.StockQuantity)
	}
}

func TestAddOrderItems(t *testing.T) {
	e := newEnv(t)
	d := e.checkout(t, 1)
	hat := e.st.PutProduct(product.Product{Name: "Hat", Price: decimal.RequireFromString("7.25"), StockQuantity: 2})

	path := "/orders/" + strconv.FormatInt(d.ID, 10) + "/items"
	w := e.do(t, alice, http.MethodPost, path, `{"items":[{"product_id":`+strconv.FormatInt(hat.ID, 10)+`,"quantity":2}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var res order.AddItemsResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if !res.NewTotal.Equal(decimal.RequireFromString("24.50")) {
		t.Fatalf("new_total=%s", res.NewTotal)
	}

	w = e.do(t, alice, http.MethodPost, path, `{"items":[{"product_id":`+strconv.FormatInt(e.shirt.ID, 10)+`,"quantity":1}]}`)
	if w.Code != http.StatusConflict || errorCode(t, w) != "product_already_in_order" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCartItems(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, alice, http.MethodPost, "/cart/items", `{"product_id":`+strconv.FormatInt(e.shirt.ID, 10)+`,"quantity":1,"selected_size":"M"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var it cart.Item
	_ = json.Unmarshal(w.Body.Bytes(), &it)
	path := "/cart/items/" + strconv.FormatInt(it.ID, 10)

	if w := e.do(t, bob, http.MethodGet, path, ""); w.Code != http.StatusForbidden {
		t.Fatalf("other user: status=%d", w.Code)
	}
	if w := e.do(t, alice, http.MethodPut, path, `{"selected_size":"L"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("put without quantity: status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.do(t, alice, http.MethodPatch, path, `{"quantity":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &it)
	if it.Quantity != 2 || it.SelectedSize == nil || *it.SelectedSize != "M" {
		t.Fatalf("patch result: %+v", it)
	}

	if w := e.do(t, alice, http.MethodDelete, path, ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := e.do(t, alice, http.MethodGet, path, ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.do(t, alice, http.MethodDelete, "/cart", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
