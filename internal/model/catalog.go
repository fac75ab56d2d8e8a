package model

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Categories is the fixed cargo category catalog
var Categories = []string{
	"电子产品",
	"服装鞋帽",
	"食品饮料",
	"家具建材",
	"化工产品",
	"机械设备",
	"汽车配件",
	"医药保健",
	"图书文具",
	"其他货物",
}

// Cities is the fixed origin/destination catalog
var Cities = []string{
	"北京", "上海", "广州", "深圳", "杭州",
	"南京", "武汉", "重庆", "成都", "西安",
	"天津", "青岛", "苏州", "长沙", "郑州",
	"大连", "宁波", "福州", "厦门", "昆明",
}

// PaymentStatus enum constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusVerified  = "verified"
	PaymentStatusCollected = "collected"
)

var PaymentStatusLabels = map[string]string{
	PaymentStatusPending:   "待付款",
	PaymentStatusVerified:  "已核实",
	PaymentStatusCollected: "已收款",
}

func IsCategory(s string) bool { return slices.Contains(Categories, s) }

func IsCity(s string) bool { return slices.Contains(Cities, s) }

func IsPaymentStatus(s string) bool {
	_, ok := PaymentStatusLabels[s]
	return ok
}

// PaymentMethod is resolved once at the boundary: whatever shape a client sends
// (bare value, bare label or {value,label} object) it is stored as its value.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodWeChat       PaymentMethod = "wechat"
	PaymentMethodAlipay       PaymentMethod = "alipay"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodBankCard     PaymentMethod = "bank_card"
	PaymentMethodCheck        PaymentMethod = "check"
)

// PaymentMethods lists the catalog in display order
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodWeChat,
	PaymentMethodAlipay,
	PaymentMethodBankTransfer,
	PaymentMethodBankCard,
	PaymentMethodCheck,
}

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodCash:         "现金",
	PaymentMethodWeChat:       "微信支付",
	PaymentMethodAlipay:       "支付宝",
	PaymentMethodBankTransfer: "银行转账",
	PaymentMethodBankCard:     "银行卡",
	PaymentMethodCheck:        "支票",
}

// ParsePaymentMethod accepts either a catalog value or its display label.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(s)
	if _, ok := paymentMethodLabels[m]; ok {
		return m, true
	}
	for value, label := range paymentMethodLabels {
		if label == s {
			return value, true
		}
	}
	return m, false
}

func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethodLabels[m]
	return ok
}

func (m PaymentMethod) Label() string {
	return paymentMethodLabels[m]
}

// PaymentMethodOption is the wire shape of a payment method
type PaymentMethodOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (m PaymentMethod) Option() PaymentMethodOption {
	return PaymentMethodOption{Value: string(m), Label: m.Label()}
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	if m == "" {
		return []byte("null"), nil
	}
	return json.Marshal(m.Option())
}

// UnmarshalJSON normalizes the accepted shapes. Unknown values are kept verbatim
// so validation can report them.
func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '{' {
		var opt PaymentMethodOption
		if err := json.Unmarshal(data, &opt); err != nil {
			return err
		}
		raw = opt.Value
		if raw == "" {
			raw = opt.Label
		}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m, _ = ParsePaymentMethod(raw)
	return nil
}
