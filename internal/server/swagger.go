package server

//go:generate swag init -g internal/server/server.go -o docs

// @title Scanfield Gateway API
// @version 0.1
// @description Interactive documentation for the scan gateway API surface.
// @contact.name Scanfield Maintainers
// @contact.url https://github.com/peternemser-ui/font-scanner-sub013
// @BasePath /
