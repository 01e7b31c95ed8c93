// Package config provides configuration parsing for vnav applications.
//
// The configuration is stored in vnav.json (or vnav.yaml) at the project
// root. This package handles loading, saving, and validating configuration
// and turns the route list into a route table.
//
// # Configuration File Structure
//
//	{
//	  "name": "shop",
//	  "server": {
//	    "address": "localhost:3000",
//	    "readTimeout": "10s",
//	    "allowedOrigins": ["https://shop.example.com"]
//	  },
//	  "auth": {
//	    "loginPath": "/login",
//	    "homePath": "/",
//	    "redisAddr": "localhost:6379"
//	  },
//	  "loader": {
//	    "bucket": "shop-components",
//	    "region": "eu-central-1",
//	    "prefix": "components/"
//	  },
//	  "components": {
//	    "home-page": "<h1>Welcome</h1>"
//	  },
//	  "routes": [
//	    {"path": "/", "component": "home-page"},
//	    {"path": "/orders/:id:int", "component": "order-page", "secured": true, "lazy": true}
//	  ]
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Server.Address)
package config
