package main

// General API documentation for swaggo. Regenerate internal/httpapi/docs with
// `swag init -g cmd/predictord/docs.go -o internal/httpapi/docs`.
//
// @title           predictord API
// @version         1.0
// @description     Batched inference server for recommendation models.
//
// @contact.name   predictord maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
