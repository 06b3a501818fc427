package main

import (
	"github.com/NVIDIA/yafct/pkg/cli"
)

func main() {
	cli.Execute()
}
