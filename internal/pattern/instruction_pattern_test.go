package pattern

import "testing"

func TestParseInstructionPattern_RejectsNegativeDisplacement(t *testing.T) {
	_, err := ParseInstructionPattern("lea rbp,[rip - $num:disp]")
	if err == nil {
		t.Fatal("expected an error for a negated variable operand")
	}
	if _, ok := err.(*ErrNegativeDisplacement); !ok {
		t.Fatalf("got error of type %T, want *ErrNegativeDisplacement", err)
	}
}

func TestInstructionPattern_UniqueRegisterVariables(t *testing.T) {
	p, err := ParseInstructionPattern("xchg $reg:r,[$reg:r + $num:n]")
	if err != nil {
		t.Fatalf("ParseInstructionPattern: %v", err)
	}
	unique := p.UniqueRegisterVariables()
	if len(unique) != 1 || unique[0].Name != "r" {
		t.Fatalf("UniqueRegisterVariables() = %+v, want one variable named r", unique)
	}
}

func TestInstructionPattern_NumberVariables(t *testing.T) {
	p, err := ParseInstructionPattern("lea rbp,[rip + $num:disp]")
	if err != nil {
		t.Fatalf("ParseInstructionPattern: %v", err)
	}
	numbers := p.NumberVariables()
	if len(numbers) != 1 || numbers[0].Name != "disp" {
		t.Fatalf("NumberVariables() = %+v, want one variable named disp", numbers)
	}
}

func TestInstructionPattern_SubstituteRegisters(t *testing.T) {
	p, err := ParseInstructionPattern("push $reg:r $len:pad")
	if err != nil {
		t.Fatalf("ParseInstructionPattern: %v", err)
	}
	got := p.substituteRegisters([]RegisterBinding{{Name: "r", Register: RAX}})
	if want := "push rax "; got != want {
		t.Errorf("substituteRegisters() = %q, want %q", got, want)
	}
}
