package main

import "github.com/folio-ssg/folio/cmd"

func main() {
	cmd.Execute()
}
