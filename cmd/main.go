// Command salaryqa runs the entry quality assurance service and its
// maintenance commands.
package main

func main() {
	Execute()
}
