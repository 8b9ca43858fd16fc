package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/player --output domain/player --outpkg playermock --filename source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/session --output domain/session --outpkg sessionmock --filename store_mock.go
