package metrics

import (
	"sort"

	"commerce-insights/internal/dataset"
)

type PaymentMethod struct {
	Type         string  `json:"type"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
	Share        Scalar  `json:"share_percent"`
}

type Payments struct {
	Methods []PaymentMethod `json:"methods"`
	Total   float64         `json:"total"`
}

// PaymentBreakdown sums payment values per method, highest revenue first.
// The method revenues add up to Total.
func (e *Engine) PaymentBreakdown(v *dataset.View) Payments {
	index := make(map[string]int)
	var p Payments
	for _, o := range v.Orders() {
		for _, pay := range v.Payments(o) {
			i, ok := index[pay.Type]
			if !ok {
				i = len(p.Methods)
				index[pay.Type] = i
				p.Methods = append(p.Methods, PaymentMethod{Type: pay.Type})
			}
			p.Methods[i].Transactions++
			p.Methods[i].Revenue += pay.Value
			p.Total += pay.Value
		}
	}
	for i := range p.Methods {
		p.Methods[i].Share = percent(p.Methods[i].Revenue, p.Total)
	}
	sort.Slice(p.Methods, func(i, j int) bool {
		if p.Methods[i].Revenue != p.Methods[j].Revenue {
			return p.Methods[i].Revenue > p.Methods[j].Revenue
		}
		return p.Methods[i].Type < p.Methods[j].Type
	})
	return p
}
