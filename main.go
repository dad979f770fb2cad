package main

import (
	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/contract"
)

func main() {
	cc, err := contract.NewChaincode()
	if err != nil {
		panic("Error creating energy trading chaincode: " + err.Error())
	}
	if err := cc.Start(); err != nil {
		panic("Error starting chaincode: " + err.Error())
	}
}
