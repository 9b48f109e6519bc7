// @title Event Registration API
// @version 1.0
// @description Capacity-bounded, duplicate-safe event registration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

func main() {
	Execute()
}
