package mocks

//go:generate mockgen -destination=./mock_sandbox_api.go -package=mocks github.com/rxtech-lab/sandbox-risk/internal/sandbox API
//go:generate mockgen -destination=./mock_price_source.go -package=mocks github.com/rxtech-lab/sandbox-risk/internal/pricefeed Source
