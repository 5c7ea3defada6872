// Command token mints a bearer token for the API owner, signed with
// JWT_SECRET.
package main

import (
	"flag"
	"fmt"

	"mein-essen/internal/utils"
	"mein-essen/pkg/jwt"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	owner := flag.String("owner", "owner", "owner id stored in the token")
	ttl := flag.Duration("ttl", 0, "token lifetime, 0 for no expiry")
	flag.Parse()

	utils.LoadConfig()
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"))

	token, err := jwtService.GenerateToken(*owner, jwt.RoleOwner, *ttl)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
}
