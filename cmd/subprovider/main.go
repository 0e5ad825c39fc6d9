package main

import (
	// Register plugins via side-effects
	_ "subprovider/internal/collectors/file"
	_ "subprovider/internal/collectors/http"
	_ "subprovider/internal/publishers/file"
	_ "subprovider/internal/publishers/github"
	_ "subprovider/internal/publishers/stdout"
)

func main() {
	Execute()
}
