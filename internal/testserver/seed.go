package testserver

import "time"

// Seed helpers populate the stub backend directly, bypassing the API.

func (s *Server) SeedUser(username, password, email, firstName, lastName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[username] = &account{
		User: userDoc{
			ID:        s.id(),
			Username:  username,
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
		},
		Password: password,
	}
}

func (s *Server) SeedCustomer(name, email, phone, address string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &customerDoc{
		ID:        s.id(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}
	s.customers[doc.ID] = doc
	return doc.ID
}

func (s *Server) SeedProduct(name, category, price, cost string, stock, reorderLevel int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &productDoc{
		ID:           s.id(),
		Name:         name,
		Category:     category,
		Price:        price,
		Cost:         cost,
		Unit:         "pcs",
		CreatedAt:    time.Now().UTC(),
		Stock:        stock,
		ReorderLevel: reorderLevel,
	}
	s.products[doc.ID] = doc

	invID := s.id()
	s.inventory[invID] = &inventoryDoc{
		ID:              invID,
		Product:         doc.ID,
		ProductName:     doc.Name,
		QuantityInStock: stock,
		ReorderLevel:    reorderLevel,
		LastUpdated:     time.Now().UTC(),
	}
	return doc.ID
}

func (s *Server) SeedSale(customerID int64, total string, date time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &saleDoc{
		ID:            s.id(),
		Customer:      customerID,
		Total:         total,
		Date:          date,
		Status:        "Completed",
		PaymentMethod: "Cash",
	}
	if customer, ok := s.customers[customerID]; ok {
		doc.CustomerName = customer.Name
	}
	s.sales[doc.ID] = doc
	return doc.ID
}

func (s *Server) SeedForecast(productID int64, forecastDate string, predictedQuantity int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &forecastDoc{
		ID:                s.id(),
		Product:           productID,
		ForecastDate:      forecastDate,
		PredictedQuantity: predictedQuantity,
		ModelUsed:         "ARIMA",
		CreatedAt:         time.Now().UTC(),
	}
	if product, ok := s.products[productID]; ok {
		doc.ProductName = product.Name
	}
	s.forecasts[doc.ID] = doc
	return doc.ID
}
