package main

import _ "github.com/joho/godotenv/autoload"

// main starts the objgate CLI.
//
//	@title			objgate
//	@version		1.0
//	@description	S3-compatible object storage gateway.
//	@BasePath		/api
func main() {
	Execute()
}
