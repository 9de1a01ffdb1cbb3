// cmd/main.go
package main

import (
	"einvoice-gateway/app"
	_ "einvoice-gateway/docs"
)

// @title           E-Invoice Gateway API
// @version         1.0
// @description     Internal API in front of the MyInvois e-invoicing gateway: TIN validation, document submission, status and cancellation.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
