package main

import (
	pppos "github.com/DJM595079527/lwip/src"
)

func main() {
	pppos.PpposDumpMain()
}
