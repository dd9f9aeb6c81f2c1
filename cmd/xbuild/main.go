package main

import "github.com/goplus/xbuild/cmd/xbuild/internal"

func main() {
	internal.Execute()
}
