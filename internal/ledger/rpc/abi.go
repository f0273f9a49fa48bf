package rpc

// contractABI covers the read-only functions of the message contract.
const contractABI = `[
  {"type":"function","name":"getMessage","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"id","type":"uint256"},
     {"name":"author","type":"address"},
     {"name":"fid","type":"uint256"},
     {"name":"username","type":"string"},
     {"name":"text","type":"string"},
     {"name":"timestamp","type":"uint256"},
     {"name":"usernameColor","type":"bytes3"}]}]},
  {"type":"function","name":"getMessageCount","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]}
]`
