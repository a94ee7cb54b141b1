package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"vegshop/internal/service/owner"
)

// Reads a password from stdin and prints the bcrypt hash for OWNER_PASSWORD_HASH.
func main() {
	fmt.Fprint(os.Stderr, "owner password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("read password: %v", err)
	}
	hash, err := owner.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
