package testserver

import (
	"net/http"
	"strconv"
	"time"
)

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*customerDoc, 0, len(s.customers))
	for _, c := range s.customers {
		list = append(list, c)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var doc customerDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc.ID = s.id()
	doc.CreatedAt = time.Now().UTC()
	s.customers[doc.ID] = &doc
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.customers[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "customer not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}
	var doc customerDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "customer not found")
		return
	}
	doc.ID = id
	doc.CreatedAt = existing.CreatedAt
	s.customers[id] = &doc
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.customers, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*productDoc, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) listLowStock(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*productDoc, 0)
	for _, p := range s.products {
		if p.Stock <= p.ReorderLevel {
			list = append(list, p)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var doc productDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc.ID = s.id()
	doc.CreatedAt = time.Now().UTC()
	if doc.Unit == "" {
		doc.Unit = "pcs"
	}
	s.products[doc.ID] = &doc

	// Product creation seeds the paired inventory record.
	inv := &inventoryDoc{
		ID:              s.id(),
		Product:         doc.ID,
		ProductName:     doc.Name,
		QuantityInStock: doc.Stock,
		ReorderLevel:    doc.ReorderLevel,
		LastUpdated:     time.Now().UTC(),
	}
	if inv.ReorderLevel == 0 {
		inv.ReorderLevel = 10
		doc.ReorderLevel = 10
	}
	s.inventory[inv.ID] = inv

	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.products[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}
	var doc productDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "product not found")
		return
	}
	doc.ID = id
	doc.CreatedAt = existing.CreatedAt
	s.products[id] = &doc
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSales(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*saleDoc, 0, len(s.sales))
	for _, sale := range s.sales {
		list = append(list, sale)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createSale(w http.ResponseWriter, r *http.Request) {
	var doc saleDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if customer, ok := s.customers[doc.Customer]; ok {
		doc.CustomerName = customer.Name
	}
	doc.ID = s.id()
	doc.Date = time.Now().UTC()
	if doc.Status == "" {
		doc.Status = "Completed"
	}
	if doc.PaymentMethod == "" {
		doc.PaymentMethod = "Cash"
	}
	s.sales[doc.ID] = &doc
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.sales[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "sale not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) updateSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}
	var doc saleDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sales[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "sale not found")
		return
	}
	doc.ID = id
	doc.Date = existing.Date
	s.sales[id] = &doc
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sales, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listInventory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*inventoryDoc, 0, len(s.inventory))
	for _, record := range s.inventory {
		list = append(list, record)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createInventory(w http.ResponseWriter, r *http.Request) {
	var doc inventoryDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if product, ok := s.products[doc.Product]; ok {
		doc.ProductName = product.Name
	}
	doc.ID = s.id()
	doc.LastUpdated = time.Now().UTC()
	s.inventory[doc.ID] = &doc
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.inventory[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "inventory record not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) updateInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}
	var doc inventoryDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.inventory[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "inventory record not found")
		return
	}
	doc.ID = id
	doc.ProductName = existing.ProductName
	doc.LastUpdated = time.Now().UTC()
	s.inventory[id] = &doc

	// Keep the product's derived stock fields in step.
	for _, product := range s.products {
		if product.ID == doc.Product {
			product.Stock = doc.QuantityInStock
			product.ReorderLevel = doc.ReorderLevel
		}
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inventory, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listForecasts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*forecastDoc, 0, len(s.forecasts))
	for _, f := range s.forecasts {
		list = append(list, f)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createForecast(w http.ResponseWriter, r *http.Request) {
	var doc forecastDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if product, ok := s.products[doc.Product]; ok {
		doc.ProductName = product.Name
	}
	doc.ID = s.id()
	doc.CreatedAt = time.Now().UTC()
	if doc.ModelUsed == "" {
		doc.ModelUsed = "ARIMA"
	}
	s.forecasts[doc.ID] = &doc
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getForecast(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.forecasts[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "forecast not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) updateForecast(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}
	var doc forecastDoc
	if err := decode(r, &doc); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.forecasts[id]
	if !ok {
		errorJSON(w, http.StatusNotFound, "forecast not found")
		return
	}
	doc.ID = id
	doc.CreatedAt = existing.CreatedAt
	s.forecasts[id] = &doc
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteForecast(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.forecasts, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var revenue, inventoryValue, recentRevenue float64
	var lowStock, recentSales int

	for _, sale := range s.sales {
		total, _ := strconv.ParseFloat(sale.Total, 64)
		revenue += total
		if time.Since(sale.Date) <= 30*24*time.Hour {
			recentSales++
			recentRevenue += total
		}
	}
	for _, product := range s.products {
		cost, _ := strconv.ParseFloat(product.Cost, 64)
		inventoryValue += cost * float64(product.Stock)
		if product.Stock <= product.ReorderLevel {
			lowStock++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_customers":        len(s.customers),
		"total_products":         len(s.products),
		"total_sales":            len(s.sales),
		"total_revenue":          revenue,
		"total_inventory_value":  inventoryValue,
		"low_stock_count":        lowStock,
		"recent_sales_30_days":   recentSales,
		"recent_revenue_30_days": recentRevenue,
	})
}
