/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package strategy

import (
	"github.com/antchfx/xmlquery"

	"github.com/blnkfinance/docflow/internal/xpath"
	"github.com/blnkfinance/docflow/model"
)

const BusinessPriority = 80

// businessStrategy validates the required elements of a well-known business
// document before any rule runs.
type businessStrategy struct {
	base
	required requiredElements
}

func (s businessStrategy) Validate(doc *xmlquery.Node, iface model.Interface) []string {
	if xpath.RootElement(doc) == nil {
		return []string{"document has no root element"}
	}
	problems := ValidateStructure(doc, iface)
	problems = append(problems, validateVersion(doc)...)
	return append(problems, s.required.check(doc)...)
}

func NewInvoiceStrategy() Strategy {
	return businessStrategy{
		base: base{name: "invoice", types: []string{"INVOICE"}, priority: BusinessPriority},
		required: requiredElements{
			header:     []string{"InvoiceNumber", "InvoiceDate", "DueDate", "TotalAmount"},
			lineItem:   "LineItem",
			lineFields: []string{"ItemNumber", "Quantity", "UnitPrice"},
		},
	}
}

func NewOrderStrategy() Strategy {
	return businessStrategy{
		base: base{name: "order", types: []string{"ORDER"}, priority: BusinessPriority},
		required: requiredElements{
			header:     []string{"OrderNumber", "OrderDate", "CustomerNumber", "TotalAmount"},
			lineItem:   "OrderItem",
			lineFields: []string{"ProductCode", "Quantity", "UnitPrice"},
		},
	}
}

func NewShipmentStrategy() Strategy {
	return businessStrategy{
		base: base{name: "shipment", types: []string{"SHIPMENT"}, priority: BusinessPriority},
		required: requiredElements{
			header:     []string{"ShipmentNumber", "ShipDate", "CarrierCode", "TrackingNumber"},
			lineItem:   "ShipmentItem",
			lineFields: []string{"ItemNumber", "Quantity", "Weight"},
		},
	}
}
