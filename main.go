package main

import (
	"fmt"

	_ "github.com/dylanhross/dhr-util/colorset"
	_ "github.com/dylanhross/dhr-util/logger"
	_ "github.com/dylanhross/dhr-util/memoize"
	_ "github.com/dylanhross/dhr-util/rnaseq"
)

func main() {
	fmt.Println("Hi")
}
